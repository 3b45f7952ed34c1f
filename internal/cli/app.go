// Package cli is a small interactive shell over the authentication facade,
// used for manual testing against a live API.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/facade"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/models"
)

type App struct {
	auth   *facade.Auth
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(auth *facade.Auth) *App {
	return &App{
		auth:   auth,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// Run restores the previous session and starts the shell. It returns when
// the user quits or stdin is exhausted.
func (a *App) Run(ctx context.Context) {
	if stream := a.auth.StateStream(); stream != nil {
		first := true
		unsub := stream.Subscribe(func(state models.AuthState) {
			if first {
				// skip the snapshot delivered on subscribe
				first = false
				return
			}
			fmt.Fprintf(a.out, "[state] %s\n", describeState(state))
		})
		defer unsub()
	}

	if err := a.auth.Initialize(ctx); err != nil {
		fmt.Fprintf(a.out, "Session restore failed (%v); continuing.\n", err)
	}

	fmt.Fprintln(a.out, "auth shell (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

func (a *App) status() string {
	state := a.auth.CurrentState()
	switch state.Status {
	case models.StatusAuthenticated:
		if state.User != nil {
			return fmt.Sprintf("(%s)", state.User.Email)
		}
		return "(authenticated)"
	case models.StatusUnauthenticated:
		return "(anonymous)"
	default:
		return "(?)"
	}
}

func describeState(state models.AuthState) string {
	s := state.Status.String()
	if state.User != nil {
		s += " " + state.User.Email
	}
	if state.Error != "" {
		s += " (" + state.Error + ")"
	}
	return s
}

func (a *App) isLoggedIn() bool {
	return a.auth.CurrentState().Status == models.StatusAuthenticated
}

func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	displayName, err := GetSimpleText(a.reader, "Enter display name", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	confirm, err := GetPassword("Confirm password", a.out)
	if err != nil {
		return err
	}

	res := a.auth.SignUp(ctx, models.SignUpRequest{
		Email:           email,
		DisplayName:     displayName,
		Password:        password,
		ConfirmPassword: confirm,
	})
	a.printResult(res, res.Detail)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		return err
	}

	res := a.auth.Login(ctx, models.LoginRequest{Email: email, Password: password})
	a.printResult(res, "Logged in.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	snapshot, err := a.auth.GetCurrentUser(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Email:    %s\n", snapshot.User.Email)
	fmt.Fprintf(a.out, "Name:     %s\n", snapshot.User.DisplayName)
	fmt.Fprintf(a.out, "Roles:    %s\n", strings.Join(snapshot.Roles, ", "))
	fmt.Fprintf(a.out, "Access:   %s\n", snapshot.AppAccess)
	return nil
}

// State prints the reconciler's current snapshot.
func (a *App) State(ctx context.Context) error {
	state := a.auth.CurrentState()
	fmt.Fprintf(a.out, "Status:   %s\n", state.Status)
	if state.Error != "" {
		fmt.Fprintf(a.out, "Error:    %s\n", state.Error)
	}
	if state.Status != models.StatusAuthenticated {
		return nil
	}
	fmt.Fprintf(a.out, "Roles:    %s\n", strings.Join(state.Roles, ", "))
	if state.AppAccess != nil {
		fmt.Fprintf(a.out, "Access:   %s\n", *state.AppAccess)
	}
	if len(state.ProfileComplete) > 0 {
		roles := make([]string, 0, len(state.ProfileComplete))
		for role := range state.ProfileComplete {
			roles = append(roles, role)
		}
		sort.Strings(roles)
		for _, role := range roles {
			fmt.Fprintf(a.out, "Profile:  %s complete=%v\n", role, state.ProfileComplete[role])
		}
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		fmt.Fprintf(a.out, "Server logout failed (%v); local session cleared.\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) printResult(res models.Result, successMsg string) {
	if res.Success {
		if successMsg == "" {
			successMsg = "Success!"
		}
		fmt.Fprintln(a.out, successMsg)
		return
	}
	fmt.Fprintf(a.out, "Failed: %s\n", res.Error)
	fields := make([]string, 0, len(res.FieldErrors))
	for field := range res.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		for _, msg := range res.FieldErrors[field] {
			if msg == res.Error {
				continue
			}
			fmt.Fprintf(a.out, "  %s: %s\n", field, msg)
		}
	}
}
