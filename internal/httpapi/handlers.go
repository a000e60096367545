package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-contacts-cache/domain"
)

type categoryHandler struct {
	service CategoryService
}

func (h *categoryHandler) list(c echo.Context) error {
	items, err := h.service.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *categoryHandler) get(c echo.Context) error {
	item, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (h *categoryHandler) query(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name query parameter is required")
	}
	item, err := h.service.GetByName(c.Request().Context(), name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (h *categoryHandler) create(c echo.Context) error {
	var req createCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	item, err := h.service.Create(c.Request().Context(), domain.CategoryInput{Name: req.Name})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *categoryHandler) update(c echo.Context) error {
	var req updateCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	patch := domain.CategoryPatch{ID: c.Param("id"), Name: req.Name}
	if _, err := h.service.Update(c.Request().Context(), patch); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *categoryHandler) delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type contactHandler struct {
	service ContactService
}

func (h *contactHandler) list(c echo.Context) error {
	items, err := h.service.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *contactHandler) get(c echo.Context) error {
	item, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (h *contactHandler) create(c echo.Context) error {
	var req createContactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	item, err := h.service.Create(c.Request().Context(), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *contactHandler) update(c echo.Context) error {
	var req updateContactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if _, err := h.service.Update(c.Request().Context(), req.patch(c.Param("id"))); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *contactHandler) delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
