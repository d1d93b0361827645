package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ArowuTest/promo-lottery/internal/config"
	"github.com/ArowuTest/promo-lottery/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func validRole(r models.AdminUserRole) bool {
	switch r {
	case models.RoleSuperAdmin, models.RoleAdmin, models.RoleHost, models.RoleWinnerReports:
		return true
	}
	return false
}

func validStatus(s models.UserStatus) bool {
	switch s {
	case models.StatusActive, models.StatusInactive, models.StatusLocked:
		return true
	}
	return false
}

// requireDB answers 503 when no user database is configured.
func requireDB(c *gin.Context) bool {
	if config.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "User database is not configured"})
		return false
	}
	return true
}

// SeedAdmin creates the first SUPERADMIN when the users table is empty.
func SeedAdmin(db *gorm.DB, username, password, email string) error {
	if username == "" || password == "" {
		return nil
	}
	var count int64
	if err := db.Model(&models.AdminUser{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if email == "" {
		email = username + "@localhost"
	}
	admin := models.AdminUser{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         models.RoleSuperAdmin,
		Status:       models.StatusActive,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	logger.Infof("handlers: created initial admin %q", username)
	return nil
}

// CreateUser creates a new admin user.
func CreateUser(c *gin.Context) {
	if !requireDB(c) {
		return
	}
	var input struct {
		Username string               `json:"username" binding:"required"`
		Email    string               `json:"email" binding:"required,email"`
		Password string               `json:"password" binding:"required,min=6"`
		Role     models.AdminUserRole `json:"role" binding:"required"`
		Status   models.UserStatus    `json:"status,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}
	if !validRole(input.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	newUser := models.AdminUser{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashed),
		Role:         input.Role,
		Status:       models.StatusActive,
	}
	if input.Status != "" {
		if !validStatus(input.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		newUser.Status = input.Status
	}

	if err := config.DB.Create(&newUser).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user: " + err.Error()})
		return
	}
	newUser.PasswordHash = ""
	c.JSON(http.StatusCreated, newUser)
}

// ListUsers returns all admin users.
func ListUsers(c *gin.Context) {
	if !requireDB(c) {
		return
	}
	var users []models.AdminUser
	if err := config.DB.Order("created_at asc").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users: " + err.Error()})
		return
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	c.JSON(http.StatusOK, users)
}

// findUser loads the user named by the :id parameter, answering the request on failure.
func findUser(c *gin.Context) (models.AdminUser, bool) {
	var user models.AdminUser
	uid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid UUID format"})
		return user, false
	}
	if err := config.DB.First(&user, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error: " + err.Error()})
		}
		return user, false
	}
	return user, true
}

// GetUser returns one user by ID.
func GetUser(c *gin.Context) {
	if !requireDB(c) {
		return
	}
	user, ok := findUser(c)
	if !ok {
		return
	}
	user.PasswordHash = ""
	c.JSON(http.StatusOK, user)
}

// UpdateUser updates an existing user.
func UpdateUser(c *gin.Context) {
	if !requireDB(c) {
		return
	}
	existing, ok := findUser(c)
	if !ok {
		return
	}

	var payload struct {
		Username string               `json:"username,omitempty"`
		Email    string               `json:"email,omitempty"`
		Role     models.AdminUserRole `json:"role,omitempty"`
		Status   models.UserStatus    `json:"status,omitempty"`
		Password string               `json:"password,omitempty"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}

	if payload.Username != "" {
		existing.Username = payload.Username
	}
	if payload.Email != "" {
		existing.Email = payload.Email
	}
	if payload.Role != "" {
		if !validRole(payload.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
			return
		}
		existing.Role = payload.Role
	}
	if payload.Status != "" {
		if !validStatus(payload.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		existing.Status = payload.Status
	}
	if payload.Password != "" {
		if len(payload.Password) < 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password too short"})
			return
		}
		h, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash new password"})
			return
		}
		existing.PasswordHash = string(h)
	}

	if err := config.DB.Save(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update: " + err.Error()})
		return
	}
	existing.PasswordHash = ""
	c.JSON(http.StatusOK, existing)
}

// DeleteUser removes a user by ID.
func DeleteUser(c *gin.Context) {
	if !requireDB(c) {
		return
	}
	uid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid UUID"})
		return
	}
	if err := config.DB.Delete(&models.AdminUser{}, "id = ?", uid).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}
