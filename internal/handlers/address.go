package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/ttshop/tyrestore/internal/middleware/auth"
	"github.com/ttshop/tyrestore/internal/service"
)

type AddressHandler struct {
	Addresses *service.AddressService
}

func (h *AddressHandler) CreateAddress(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req service.AddressInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	address, err := h.Addresses.CreateAddress(ctx, userID, req)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, address)
}

func (h *AddressHandler) ListMyAddresses(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	addresses, err := h.Addresses.GetAddressesByUser(ctx, userID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, addresses)
}

func (h *AddressHandler) UpdateAddress(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	addressID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var req service.AddressInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	address, err := h.Addresses.UpdateAddress(ctx, addressID, userID, req)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, address)
}

func (h *AddressHandler) DeleteAddress(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	addressID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.Addresses.DeleteAddress(ctx, addressID, userID); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
