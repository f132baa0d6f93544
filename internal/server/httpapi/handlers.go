package httpapi

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/weathermood/weathermood/internal/common"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// recordBody is the wire shape of one document, shared with the client.
type recordBody struct {
	ID        string          `json:"id"`
	Fields    json.RawMessage `json:"fields"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (s *Server) register(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user, err := s.users.Register(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorConstraint) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": user.ID, "email": user.Email})
}

func (s *Server) login(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	token, err := s.users.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	return c.JSON(fiber.Map{"access_token": token})
}

func (s *Server) upsertRecord(c *fiber.Ctx) error {
	var body recordBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	recordID := c.Params("id")
	if body.ID != "" && body.ID != recordID {
		return fiber.NewError(fiber.StatusBadRequest, "record id mismatch")
	}

	err := s.records.Upsert(c.Context(),
		c.Params("uid"), c.Params("collection"), recordID, body.Fields, body.UpdatedAt)
	if err != nil {
		if errors.Is(err, common.ErrorConstraint) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listRecords(c *fiber.Ctx) error {
	list, err := s.records.List(c.Context(), c.Params("uid"), c.Params("collection"))
	if err != nil {
		return err
	}

	out := make([]recordBody, 0, len(list))
	for _, rec := range list {
		out = append(out, recordBody{
			ID:        rec.RecordID,
			Fields:    rec.Payload,
			UpdatedAt: rec.UpdatedAt,
		})
	}

	return c.JSON(fiber.Map{"records": out})
}

func (s *Server) deleteRecord(c *fiber.Ctx) error {
	err := s.records.Delete(c.Context(), c.Params("uid"), c.Params("collection"), c.Params("id"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "record not found")
		}
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
