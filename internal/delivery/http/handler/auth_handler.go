package handler

import (
	"errors"

	"job-board/internal/delivery/http/dto"
	"job-board/internal/delivery/http/middleware"
	"job-board/internal/domain/user"
	"job-board/internal/pkg/response"
	ucauth "job-board/internal/usecase/auth"

	"github.com/gofiber/fiber/v3"
)

type AuthHandler struct {
	uc *ucauth.Service
}

type resendVerificationRequest struct {
	Email string `json:"email"`
}

func NewAuthHandler(uc *ucauth.Service) *AuthHandler {
	return &AuthHandler{uc: uc}
}

func (h *AuthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/signup", h.Signup)
	r.Get("/verify-email", h.VerifyEmail)
	r.Post("/login", h.Login)
	r.Post("/resend-verification", h.ResendVerification)
}

func (h *AuthHandler) Signup(c fiber.Ctx) error {
	var req ucauth.SignupInput
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	u, err := h.uc.Signup(c.Context(), req)
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	return response.Success(c, fiber.StatusCreated, "Registered successfully. Verification email sent.", dto.SignupResponse{UserID: u.ID})
}

func (h *AuthHandler) VerifyEmail(c fiber.Ctx) error {
	res, err := h.uc.VerifyEmail(c.Context(), c.Query("token"))
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	switch res.Outcome {
	case user.OutcomeExpired:
		return middleware.NewAppError(fiber.StatusGone, "Token expired. A new verification email was sent.", []string{"token expired - new email sent"}, nil)
	case user.OutcomeAlreadyVerified:
		return response.Success(c, fiber.StatusOK, "Email already verified", dto.VerifyResponse{UserID: res.UserID})
	default:
		return response.Success(c, fiber.StatusOK, "Email verified successfully", dto.VerifyResponse{UserID: res.UserID})
	}
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req ucauth.LoginInput
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	out, err := h.uc.Login(c.Context(), req)
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, "Login successful", out)
}

// ResendVerification answers the same way whether or not the address is
// registered.
func (h *AuthHandler) ResendVerification(c fiber.Ctx) error {
	var req resendVerificationRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.uc.ResendVerification(c.Context(), req.Email); err != nil {
		return mapAuthUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, "If the account exists and is unverified, a verification email was sent.", nil)
}

func mapAuthUsecaseError(err error) error {
	switch {
	case errors.Is(err, ucauth.ErrValidation):
		return validationError(err)
	case errors.Is(err, ucauth.ErrEmailTaken):
		return middleware.NewAppError(fiber.StatusConflict, "Email already exists", []string{"email already exists"}, err)
	case errors.Is(err, ucauth.ErrInvalidCredentials):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid credentials", []string{"invalid credentials"}, err)
	case errors.Is(err, ucauth.ErrTokenNotFound):
		return middleware.NewAppError(fiber.StatusBadRequest, "Token invalid or malformed", []string{"invalid token"}, err)
	case errors.Is(err, ucauth.ErrUnauthenticated):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Could not validate credentials", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
