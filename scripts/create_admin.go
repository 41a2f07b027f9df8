// scripts/create_admin.go
package main

import (
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/caobathien/Church/config"
	"github.com/caobathien/Church/database"
	"github.com/caobathien/Church/models"
)

func main() {
	cfg := config.Load()
	database.Connect(cfg)

	username := get("ADMIN_USERNAME", "admin")
	email := get("ADMIN_EMAIL", "admin@thieunhi.local")
	password := get("ADMIN_PASSWORD", "doimatkhau123")

	// Tránh tạo trùng admin
	var existing models.User
	if err := database.DB.Where("username = ?", username).First(&existing).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Fatalf("failed to query users: %v", err)
		}
	} else {
		fmt.Println("Admin đã tồn tại:", username)
		os.Exit(0)
	}

	u := models.User{
		Username: username,
		Email:    email,
		Role:     models.RoleAdmin,
		Profile:  &models.Profile{HoTen: "Quản trị viên"},
	}
	if err := u.SetPassword(password); err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	if err := database.DB.Create(&u).Error; err != nil {
		log.Fatalf("failed to insert admin: %v", err)
	}

	fmt.Println("Đã tạo admin:")
	fmt.Println("   Username:", username)
	fmt.Println("   Password:", password, "(nhớ đổi sau khi đăng nhập!)")
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
