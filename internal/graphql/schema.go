package graphql

// Schema is the read-only mirror over users and items. Writes stay on the
// REST surface.
const Schema = `
	schema {
		query: Query
	}

	scalar Time

	type Query {
		items(skip: Int! = 0, limit: Int! = 100, search: String, sortBy: String! = "id", sortOrder: String! = "asc"): [Item!]!
		itemsCount(search: String): Int!
		item(id: ID!): Item
		users(skip: Int! = 0, limit: Int! = 100): [User!]!
		user(id: ID!): User
		me: User
	}

	type Item {
		id: ID!
		title: String!
		description: String
		ownerId: ID!
		owner: User
	}

	type User {
		id: ID!
		email: String!
		username: String
		fullName: String
		isActive: Boolean!
		isSuperuser: Boolean!
		createdAt: Time!
		lastLogin: Time!
	}
`
