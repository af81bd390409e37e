package handler

import (
	"github.com/labstack/echo/v4"

	"ecotrack/internal/usecase"
	"ecotrack/pkg/response"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

// CreateProfile accepts multipart fields name, city, registrationNumber,
// mobileNumber and an optional photo file.
func (h *UserHandler) CreateProfile(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}

	photo, closePhoto, err := formFile(c, "photo")
	if err != nil {
		return response.Error(c, err)
	}
	defer closePhoto()

	user, err := h.userUseCase.CreateProfile(c.Request().Context(), actor.ID, usecase.ProfileInput{
		Name:               c.FormValue("name"),
		City:               c.FormValue("city"),
		RegistrationNumber: c.FormValue("registrationNumber"),
		MobileNumber:       c.FormValue("mobileNumber"),
		Photo:              photo,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.SuccessMessage(c, "Profile created", user)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}

	photo, closePhoto, err := formFile(c, "photo")
	if err != nil {
		return response.Error(c, err)
	}
	defer closePhoto()

	user, err := h.userUseCase.UpdateProfile(c.Request().Context(), actor, usecase.ProfileInput{
		Name:  c.FormValue("name"),
		City:  c.FormValue("city"),
		Photo: photo,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.SuccessMessage(c, "Profile updated", user)
}

func (h *UserHandler) GetMe(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.GetProfile(c.Request().Context(), actor.ID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *UserHandler) GetUserByID(c echo.Context) error {
	user, err := h.userUseCase.GetProfile(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user.Summary())
}
