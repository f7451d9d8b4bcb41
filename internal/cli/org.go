package cli

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hourglasshq/hourglass/internal/model"
	"github.com/hourglasshq/hourglass/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

var (
	orgName   string
	orgEmail  string
	orgUser   string
	orgSwitch string
)

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Create or select the organization CLI commands act on",
	Long: `Create an organization with an owner account, or switch the CLI to an
existing one. Without flags the current context is printed.

Examples:
  hourglass org --name "Acme Inc" --email owner@acme.test --user "Ada"
  hourglass org --use <organization-id> --email owner@acme.test
  hourglass org`,
	RunE: runOrg,
}

func init() {
	orgCmd.Flags().StringVar(&orgName, "name", "", "Organization name to create")
	orgCmd.Flags().StringVar(&orgEmail, "email", "", "Owner email")
	orgCmd.Flags().StringVar(&orgUser, "user", "", "Owner display name")
	orgCmd.Flags().StringVar(&orgSwitch, "use", "", "Switch to an existing organization id")
}

func runOrg(cmd *cobra.Command, args []string) error {
	if orgName == "" && orgSwitch == "" {
		return showOrgContext(cmd.Context())
	}

	cfg, database, err := openDB()
	if err != nil {
		return err
	}
	defer func() {
		_ = database.Close()
	}()
	st := store.New(database)
	ctx := cmd.Context()

	if orgEmail == "" {
		return fmt.Errorf("--email is required")
	}

	if orgSwitch != "" {
		org, err := st.GetOrganization(ctx, orgSwitch)
		if err != nil {
			return fmt.Errorf("failed to load organization %q: %w", orgSwitch, err)
		}
		user, err := st.GetUserByEmail(ctx, orgEmail)
		if err != nil {
			return fmt.Errorf("failed to load user %q: %w", orgEmail, err)
		}
		if _, err := st.GetMemberByUser(ctx, org.ID, user.ID); err != nil {
			return fmt.Errorf("%s is not a member of %s: %w", orgEmail, org.Name, err)
		}

		cfg.Organization = org.ID
		cfg.Email = orgEmail
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Printf("Now acting as %s in %s\n", orgEmail, org.Name)
		return nil
	}

	// Creating a fresh organization with an owner account
	if _, err := st.GetUserByEmail(ctx, orgEmail); err == nil {
		return fmt.Errorf("email %q is already registered; use --use to switch instead", orgEmail)
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if len(passwordBytes) == 0 {
		return fmt.Errorf("password required")
	}

	hash, err := bcrypt.GenerateFromPassword(passwordBytes, bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)

	name := orgUser
	if name == "" {
		name = orgEmail
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        orgEmail,
		PasswordHash: &hashStr,
		Timezone:     cfg.Timezone,
		WeekStart:    cfg.WeekStart,
		CreatedAt:    now,
	}
	org := model.NewOrganization(uuid.NewString(), orgName)
	member := model.Member{
		ID:             uuid.NewString(),
		OrganizationID: org.ID,
		UserID:         user.ID,
		Role:           model.RoleOwner,
		CreatedAt:      now,
	}

	err = st.InTx(ctx, func(tx *store.Store) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		if err := tx.CreateOrganization(ctx, org); err != nil {
			return err
		}
		return tx.CreateMember(ctx, member)
	})
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	cfg.Organization = org.ID
	cfg.Email = orgEmail
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Created organization %s (%s) with owner %s\n", org.Name, org.ID, orgEmail)
	return nil
}

func showOrgContext(ctx context.Context) error {
	cc, err := openContext(ctx)
	if err != nil {
		return err
	}
	defer cc.Close()

	fmt.Printf("Organization: %s (%s)\n", cc.Organization.Name, cc.Organization.ID)
	fmt.Printf("Acting user:  %s <%s> (%s)\n", cc.User.Name, cc.User.Email, cc.Member.Role)
	fmt.Printf("Currency:     %s\n", cc.Organization.Currency)
	return nil
}
