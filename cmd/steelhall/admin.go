package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/steelhall/steelhall/internal/admin"
	"github.com/steelhall/steelhall/internal/client"
	"github.com/steelhall/steelhall/internal/config"
	"github.com/steelhall/steelhall/internal/models"
	"github.com/steelhall/steelhall/internal/routes"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage site content through the admin API",
	Long: `Log in to a running Steelhall server and manage warehouses, contacts,
testimonials, products and site settings.`,
}

var adminLoginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Open an admin session",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c := mustClient(false)

		emailAddr := config.GetString("client.email")
		if len(args) == 1 {
			emailAddr = args[0]
		}
		if emailAddr == "" {
			fmt.Print("Email: ")
			fmt.Scanln(&emailAddr)
		}
		fmt.Print("Password: ")
		var password string
		fmt.Scanln(&password)

		user, err := c.Login(cmd.Context(), emailAddr, password)
		if err != nil {
			fail(err)
		}
		if err := saveSession(c.Session()); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving session: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Logged in as %s\n", user.Email)
	},
}

var adminLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Close the admin session",
	Run: func(cmd *cobra.Command, args []string) {
		c := mustClient(true)
		if err := c.Logout(cmd.Context()); err != nil && !errors.Is(err, client.ErrUnauthorized) {
			fail(err)
		}
		if err := saveSession(""); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Logged out")
	},
}

func init() {
	adminCmd.AddCommand(adminLoginCmd)
	adminCmd.AddCommand(adminLogoutCmd)
	adminCmd.AddCommand(resourceCmd(admin.Warehouses()))
	adminCmd.AddCommand(resourceCmd(admin.Contacts()))
	adminCmd.AddCommand(resourceCmd(admin.Testimonials()))
	adminCmd.AddCommand(resourceCmd(admin.Products()))
	adminCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(adminCmd)
}

func sessionPath() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session"), nil
}

func saveSession(token string) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if token == "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0600)
}

// mustClient builds an API client, restoring the saved session when asked
func mustClient(withSession bool) *client.Client {
	if err := initConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var opts []client.Option
	if d := config.GetDuration("client.timeout"); d > 0 {
		opts = append(opts, client.WithTimeout(d))
	}
	c, err := client.New(config.GetString("client.base_url"), routes.Default(), opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if withSession {
		path, err := sessionPath()
		if err == nil {
			if token, err := os.ReadFile(path); err == nil {
				c.SetSession(strings.TrimSpace(string(token)))
			}
		}
	}
	return c
}

// fail prints err the way a user needs to see it and exits
func fail(err error) {
	var verr *client.ValidationError
	switch {
	case errors.As(err, &verr):
		fmt.Fprintln(os.Stderr, verr.Message)
		printFieldErrors(verr.Fields)
	case errors.Is(err, client.ErrUnauthorized):
		fmt.Fprintln(os.Stderr, "Error: not logged in, run 'steelhall admin login' first")
	case errors.Is(err, client.ErrAuthExpired):
		fmt.Fprintln(os.Stderr, "Error: session token expired, please retry")
	case errors.Is(err, client.ErrNetwork):
		fmt.Fprintf(os.Stderr, "Error: could not reach the server: %v\n", err)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

func printFieldErrors(fields models.FieldErrors) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", name, strings.Join(fields[name], ", "))
	}
}

// resourceCmd builds list/show/create/update/delete for one resource
func resourceCmd[T admin.Item](res admin.Resource[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:   res.Name,
		Short: fmt.Sprintf("Manage %s", res.Name),
	}

	controller := func() *admin.Controller[T] {
		c := mustClient(true)
		return admin.NewController(res, admin.NewClientAPI[T](c, res.Name))
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s", res.Name),
		Run: func(cmd *cobra.Command, args []string) {
			ctl := controller()
			defer ctl.Close()
			if err := ctl.Load(cmd.Context()); err != nil {
				fail(err)
			}
			term, _ := cmd.Flags().GetString("search")

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, item := range ctl.Search(term) {
				fmt.Fprintf(w, "%d\t%s\n", item.ItemID(), strings.Join(res.SearchFields(item), "\t"))
			}
			w.Flush()
		},
	}
	listCmd.Flags().String("search", "", "only show items matching this text")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: fmt.Sprintf("Show one %s", res.Singular),
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := mustID(args[0])
			item, err := client.Get[T](cmd.Context(), mustClient(true), res.Name, id)
			if err != nil {
				fail(err)
			}
			printJSON(item)
		},
	}

	createCmd := &cobra.Command{
		Use:   "create --set field=value ...",
		Short: fmt.Sprintf("Create a %s", res.Singular),
		Run: func(cmd *cobra.Command, args []string) {
			sets, _ := cmd.Flags().GetStringArray("set")
			draft := admin.NewDraft[T]()
			if err := applySets(&draft.Item, sets); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}

			ctl := controller()
			defer ctl.Close()
			if err := ctl.SubmitCreate(cmd.Context(), draft); err != nil {
				fail(err)
			}
			fmt.Printf("Created %s %d\n", res.Singular, draft.Item.ItemID())
		},
	}
	createCmd.Flags().StringArray("set", nil, "field=value, repeatable; values may be JSON")

	updateCmd := &cobra.Command{
		Use:   "update <id> --set field=value ...",
		Short: fmt.Sprintf("Update a %s", res.Singular),
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := mustID(args[0])
			sets, _ := cmd.Flags().GetStringArray("set")

			ctl := controller()
			defer ctl.Close()
			if err := ctl.Load(cmd.Context()); err != nil {
				fail(err)
			}
			item, ok := ctl.Find(id)
			if !ok {
				fail(fmt.Errorf("%s %d: %w", res.Singular, id, client.ErrNotFound))
			}
			draft := admin.EditDraft(item)
			if err := applySets(&draft.Item, sets); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if err := ctl.SubmitUpdate(cmd.Context(), id, draft); err != nil {
				fail(err)
			}
			fmt.Printf("Updated %s %d\n", res.Singular, id)
		},
	}
	updateCmd.Flags().StringArray("set", nil, "field=value, repeatable; values may be JSON")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: fmt.Sprintf("Delete a %s", res.Singular),
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := mustID(args[0])
			assumeYes, _ := cmd.Flags().GetBool("yes")

			ctl := controller()
			defer ctl.Close()
			if err := ctl.Load(cmd.Context()); err != nil {
				fail(err)
			}
			deleted, err := ctl.RequestDelete(cmd.Context(), id, stdinConfirmer(assumeYes))
			if err != nil {
				fail(err)
			}
			if !deleted {
				fmt.Println("Delete cancelled.")
				return
			}
			fmt.Printf("Deleted %s %d\n", res.Singular, id)
		},
	}
	deleteCmd.Flags().Bool("yes", false, "skip the confirmation prompt")

	cmd.AddCommand(listCmd, showCmd, createCmd, updateCmd, deleteCmd)
	return cmd
}

// stdinConfirmer asks the user to type 'yes'
func stdinConfirmer(assumeYes bool) admin.Confirmer {
	return admin.ConfirmFunc(func(_ context.Context, prompt string) (bool, error) {
		if assumeYes {
			return true, nil
		}
		fmt.Printf("%s (type 'yes' to confirm): ", prompt)
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return false, nil
		}
		return strings.TrimSpace(line) == "yes", nil
	})
}

func mustID(s string) uint {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		fmt.Fprintf(os.Stderr, "Error: invalid id %q\n", s)
		os.Exit(1)
	}
	return uint(id)
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// applySets assigns field=value pairs to v by JSON field name. String fields
// take the value verbatim, other fields parse it as JSON.
func applySets(v any, sets []string) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}

	for _, set := range sets {
		key, value, ok := strings.Cut(set, "=")
		if !ok || key == "" {
			return fmt.Errorf("expected field=value, got %q", set)
		}
		current, known := fields[key]
		if !known {
			return fmt.Errorf("unknown field %q", key)
		}
		isString := len(current) > 0 && current[0] == '"'
		if !isString && json.Valid([]byte(value)) {
			fields[key] = json.RawMessage(value)
		} else {
			quoted, _ := json.Marshal(value)
			fields[key] = quoted
		}
	}

	raw, err = json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
