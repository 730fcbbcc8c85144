package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// minPasswordLength is the shortest admin password accepted.
const minPasswordLength = 8

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage the admin console",
}

var adminHashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Set the admin console password",
	Long: `Prompt for a password, hash it with bcrypt and store the hash in the
config file. The admin console stays disabled until a hash is set.

Use --print to only print the hash, e.g. for PDFIQ_ADMIN_PASSWORD_HASH.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationBootstrap: bootstrapSettings},
	RunE:        runAdminHashPassword,
}

var (
	adminPrintOnly bool
	adminUsername  string
)

func init() {
	adminHashPasswordCmd.Flags().BoolVar(&adminPrintOnly, "print", false, "print the hash instead of saving it")
	adminHashPasswordCmd.Flags().StringVar(&adminUsername, "username", "", "also change the admin username")
	adminCmd.AddCommand(adminHashPasswordCmd)
	rootCmd.AddCommand(adminCmd)
}

func runAdminHashPassword(cmd *cobra.Command, _ []string) error {
	password, err := promptNewPassword(cmd)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if adminPrintOnly {
		cmd.Println(string(hash))
		return nil
	}

	if settingsService == nil {
		return errNotConfigured
	}
	if adminUsername != "" {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		settings.Admin.Username = adminUsername
		if err := settingsService.Save(settings); err != nil {
			return fmt.Errorf("failed to save username: %w", err)
		}
	}
	if err := settingsService.SetAdminPasswordHash(string(hash)); err != nil {
		return fmt.Errorf("failed to save password hash: %w", err)
	}

	cmd.Println("Admin password updated.")
	return nil
}

// promptNewPassword reads the password twice from a terminal, or once
// from piped input.
func promptNewPassword(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		cmd.Print("New admin password: ")
		first, err := term.ReadPassword(int(f.Fd()))
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		cmd.Print("Confirm password: ")
		second, err := term.ReadPassword(int(f.Fd()))
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		if string(first) != string(second) {
			return "", errors.New("passwords do not match")
		}
		return checkPassword(string(first))
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return checkPassword(strings.TrimRight(line, "\r\n"))
}

func checkPassword(p string) (string, error) {
	if len(p) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return p, nil
}
