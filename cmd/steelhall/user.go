package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/steelhall/steelhall/internal/config"
	"github.com/steelhall/steelhall/internal/db"
	"github.com/steelhall/steelhall/internal/email"
	"github.com/steelhall/steelhall/internal/users"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage admin users",
	Long:  "Create, list, and delete admin accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <email>",
	Short: "Create a new admin user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := initSystemDB(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		emailAddr := args[0]

		fmt.Print("Enter password: ")
		var password string
		fmt.Scanln(&password)

		user, err := users.CreateUser(db.GetDB(), emailAddr, password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("User created: %s (ID: %d)\n", user.Email, user.ID)

		if mailer := newMailer(); mailer != nil {
			loginURL := strings.TrimSuffix(config.GetString("server.base_url"), "/") + "/admin/login"
			if err := email.SendNewUserWelcome(mailer, user.Email, loginURL); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: welcome email not sent: %v\n", err)
			}
		}
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all admin users",
	Run: func(cmd *cobra.Command, args []string) {
		if err := initSystemDB(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		userList, err := users.ListUsers(db.GetDB())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing users: %v\n", err)
			os.Exit(1)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tEMAIL\tCREATED")
		for _, u := range userList {
			fmt.Fprintf(w, "%d\t%s\t%s\n", u.ID, u.Email, u.CreatedAt.Format("2006-01-02"))
		}
		w.Flush()
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <email>",
	Short: "Delete an admin user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := initSystemDB(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		user, err := users.GetUserByEmail(db.GetDB(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := users.DeleteUser(db.GetDB(), user.ID); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting user: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("User deleted: %s\n", user.Email)
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userDeleteCmd)
	rootCmd.AddCommand(userCmd)
}

// initSystemDB initializes the database connection
func initSystemDB() error {
	if err := initConfig(); err != nil {
		return err
	}

	return db.InitDB(config.GetString("database.type"), config.GetString("database.path"))
}

// newMailer returns nil when no SMTP host is configured
func newMailer() email.Sender {
	if config.GetString("smtp.host") == "" {
		return nil
	}
	svc, err := email.NewEmailService(email.Config{
		Host:     config.GetString("smtp.host"),
		Port:     config.GetString("smtp.port"),
		Username: config.GetString("smtp.username"),
		Password: config.GetString("smtp.password"),
		From:     config.GetString("smtp.from"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: mail disabled: %v\n", err)
		return nil
	}
	return svc
}
