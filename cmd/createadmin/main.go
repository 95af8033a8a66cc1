package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fttn/logproxy/internal/config"
	"github.com/fttn/logproxy/internal/models"
	"github.com/fttn/logproxy/internal/services"
	"github.com/joho/godotenv"
)

// createadmin provisions an admin account for the log viewer.
//
// Usage:
//
//	createadmin -username admin -password secret -name "Administrator"
//
// Flags left empty are prompted for interactively.
func main() {
	username := flag.String("username", "", "account username")
	password := flag.String("password", "", "account password")
	name := flag.String("name", "", "display name (defaults to the username)")
	flag.Parse()

	_ = godotenv.Load()

	reader := bufio.NewReader(os.Stdin)
	if *username == "" {
		*username = prompt(reader, "Username: ")
	}
	if *password == "" {
		*password = prompt(reader, "Password: ")
	}
	if *name == "" {
		*name = prompt(reader, "Display name (enter to use username): ")
		if *name == "" {
			*name = *username
		}
	}

	if len(*username) < 2 {
		fmt.Fprintln(os.Stderr, "error: username must be at least 2 characters")
		os.Exit(1)
	}
	if len(*password) < 6 {
		fmt.Fprintln(os.Stderr, "error: password must be at least 6 characters")
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := models.InitDB(&cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	if err := models.AutoMigrate(db); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to migrate database: %v\n", err)
		os.Exit(1)
	}

	userService := services.NewAdminUserService(db)
	user, err := userService.Create(*username, *password, *name, models.RoleAdmin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Admin user created successfully")
	fmt.Printf("  ID:       %d\n", user.ID)
	fmt.Printf("  Username: %s\n", user.Username)
	fmt.Printf("  Role:     %s\n", user.Role)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
