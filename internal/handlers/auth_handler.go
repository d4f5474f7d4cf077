// internal/handlers/auth_handler.go

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelac/internal/db"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	UserType string `json:"userType"`
}

type AuthHandler struct {
	userRepo *db.UserRepository
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{
		userRepo: db.NewUserRepository(),
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.userRepo.GetUserByUsername(req.Username)
	if err != nil || user.Password != req.Password {
		c.JSON(http.StatusUnauthorized, Response{
			Code: 401,
			Msg:  "用户名或密码错误",
		})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		UserType: user.Identity,
	})
}
