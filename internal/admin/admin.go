// Package admin serves the server-rendered management panel at /admin.
// Every route sits behind the identity middleware plus the superuser gate.
package admin

import (
	"bytes"
	"embed"
	"encoding/csv"
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/google/uuid"

	"github.com/stackpad/backend/internal/dto"
	"github.com/stackpad/backend/internal/identity"
	"github.com/stackpad/backend/internal/models"
	"github.com/stackpad/backend/internal/services"
)

//go:embed all:views
var viewsFS embed.FS

const exportPageSize = 1000

// NewEngine builds the template engine from the embedded views so the
// binary ships self-contained.
func NewEngine() *html.Engine {
	sub, _ := fs.Sub(viewsFS, "views")
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("timefmt", func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	})
	return engine
}

type Handler struct {
	users *services.UserService
	items *services.ItemService
}

func NewHandler(users *services.UserService, items *services.ItemService) *Handler {
	return &Handler{users: users, items: items}
}

func (h *Handler) Dashboard(c *fiber.Ctx) error {
	userCount, err := h.users.Count()
	if err != nil {
		return err
	}
	itemCount, err := h.items.Count("")
	if err != nil {
		return err
	}

	return c.Render("dashboard", fiber.Map{
		"Title":       "Dashboard",
		"UserCount":   userCount,
		"ItemCount":   itemCount,
		"CurrentUser": identity.CurrentUser(c),
	}, "layouts/main")
}

func (h *Handler) UsersList(c *fiber.Ctx) error {
	params := panelParams(c)
	users, count, err := h.users.List(params)
	if err != nil {
		return err
	}

	return c.Render("users", fiber.Map{
		"Title":       "Users",
		"Users":       users,
		"Count":       count,
		"Search":      params.Search,
		"SortBy":      params.SortBy,
		"SortOrder":   params.SortOrder,
		"Skip":        params.Skip,
		"Limit":       params.Limit,
		"PrevSkip":    maxInt(params.Skip-params.Limit, 0),
		"NextSkip":    params.Skip + params.Limit,
		"HasPrev":     params.Skip > 0,
		"HasNext":     int64(params.Skip+params.Limit) < count,
		"CurrentUser": identity.CurrentUser(c),
	}, "layouts/main")
}

func (h *Handler) UserDetail(c *fiber.Ctx) error {
	user, err := h.userFromPath(c)
	if err != nil {
		return err
	}
	itemCount, err := h.items.CountByOwner(user.ID)
	if err != nil {
		return err
	}

	return c.Render("user_detail", fiber.Map{
		"Title":       "User " + user.Email,
		"User":        user,
		"ItemCount":   itemCount,
		"Error":       c.Query("error"),
		"CurrentUser": identity.CurrentUser(c),
	}, "layouts/main")
}

func (h *Handler) ToggleUserActive(c *fiber.Ctx) error {
	user, err := h.userFromPath(c)
	if err != nil {
		return err
	}

	active := !user.IsActive
	if _, err := h.users.AdminUpdate(user.ID, &dto.UpdateUserRequest{IsActive: &active}); err != nil {
		return err
	}
	return c.Redirect("/admin/users/"+user.ID.String(), fiber.StatusSeeOther)
}

func (h *Handler) ToggleUserSuperuser(c *fiber.Ctx) error {
	user, err := h.userFromPath(c)
	if err != nil {
		return err
	}

	superuser := !user.IsSuperuser
	if _, err := h.users.AdminUpdate(user.ID, &dto.UpdateUserRequest{IsSuperuser: &superuser}); err != nil {
		return err
	}
	return c.Redirect("/admin/users/"+user.ID.String(), fiber.StatusSeeOther)
}

func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	user, err := h.userFromPath(c)
	if err != nil {
		return err
	}

	if current := identity.CurrentUser(c); current != nil && current.ID == user.ID {
		q := url.Values{"error": {"Super users are not allowed to delete themselves"}}
		return c.Redirect("/admin/users/"+user.ID.String()+"?"+q.Encode(), fiber.StatusSeeOther)
	}

	if err := h.users.Delete(user.ID); err != nil {
		return err
	}
	return c.Redirect("/admin/users", fiber.StatusSeeOther)
}

func (h *Handler) UsersExport(c *fiber.Ctx) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "username", "email", "full_name", "is_superuser", "is_active", "created_at", "last_login"}); err != nil {
		return err
	}

	search := c.Query("search")
	for skip := 0; ; skip += exportPageSize {
		users, _, err := h.users.List(services.ListParams{Skip: skip, Limit: exportPageSize, Search: search, SortBy: "created_at"})
		if err != nil {
			return err
		}
		for i := range users {
			u := &users[i]
			record := []string{
				u.ID.String(),
				stringValue(u.Username),
				u.Email,
				stringValue(u.FullName),
				strconv.FormatBool(u.IsSuperuser),
				strconv.FormatBool(u.IsActive),
				u.CreatedAt.Format(time.RFC3339),
				u.LastLogin.Format(time.RFC3339),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		if len(users) < exportPageSize {
			break
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="users.csv"`)
	return c.Send(buf.Bytes())
}

func (h *Handler) ItemsList(c *fiber.Ctx) error {
	params := panelParams(c)
	items, count, err := h.items.List(params)
	if err != nil {
		return err
	}

	return c.Render("items", fiber.Map{
		"Title":       "Items",
		"Items":       items,
		"Count":       count,
		"Search":      params.Search,
		"SortBy":      params.SortBy,
		"SortOrder":   params.SortOrder,
		"Skip":        params.Skip,
		"Limit":       params.Limit,
		"PrevSkip":    maxInt(params.Skip-params.Limit, 0),
		"NextSkip":    params.Skip + params.Limit,
		"HasPrev":     params.Skip > 0,
		"HasNext":     int64(params.Skip+params.Limit) < count,
		"CurrentUser": identity.CurrentUser(c),
	}, "layouts/main")
}

func (h *Handler) ItemDetail(c *fiber.Ctx) error {
	item, err := h.itemFromPath(c)
	if err != nil {
		return err
	}

	owner, err := h.users.GetByID(item.OwnerID)
	if err != nil && !errors.Is(err, services.ErrUserNotFound) {
		return err
	}

	return c.Render("item_detail", fiber.Map{
		"Title":       "Item " + item.Title,
		"Item":        item,
		"Owner":       owner,
		"CurrentUser": identity.CurrentUser(c),
	}, "layouts/main")
}

func (h *Handler) DeleteItem(c *fiber.Ctx) error {
	item, err := h.itemFromPath(c)
	if err != nil {
		return err
	}

	if err := h.items.Delete(item.ID); err != nil {
		return err
	}
	return c.Redirect("/admin/items", fiber.StatusSeeOther)
}

func (h *Handler) ItemsExport(c *fiber.Ctx) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "title", "description", "owner_id", "created_at"}); err != nil {
		return err
	}

	search := c.Query("search")
	for skip := 0; ; skip += exportPageSize {
		items, _, err := h.items.List(services.ListParams{Skip: skip, Limit: exportPageSize, Search: search})
		if err != nil {
			return err
		}
		for i := range items {
			it := &items[i]
			record := []string{
				it.ID.String(),
				it.Title,
				stringValue(it.Description),
				it.OwnerID.String(),
				it.CreatedAt.Format(time.RFC3339),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		if len(items) < exportPageSize {
			break
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="items.csv"`)
	return c.Send(buf.Bytes())
}

func (h *Handler) userFromPath(c *fiber.Ctx) (*models.User, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "User not found")
	}
	user, err := h.users.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return nil, err
	}
	return user, nil
}

func (h *Handler) itemFromPath(c *fiber.Ctx) (*models.Item, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Item not found")
	}
	item, err := h.items.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Item not found")
		}
		return nil, err
	}
	return item, nil
}

func panelParams(c *fiber.Ctx) services.ListParams {
	skip, _ := strconv.Atoi(c.Query("skip", "0"))
	limit, _ := strconv.Atoi(c.Query("limit", "25"))
	return services.ListParams{
		Skip:      skip,
		Limit:     limit,
		Search:    c.Query("search", ""),
		SortBy:    c.Query("sort_by", ""),
		SortOrder: c.Query("sort_order", "asc"),
	}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
