package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/spf13/cobra"
)

// run executes one authctl invocation with args.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root, a := newRootCmd(stdin, stdout, stderr)
	defer a.close()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) (*cobra.Command, *app) {
	a := &app{
		in:     bufio.NewReader(stdin),
		stdout: stdout,
		stderr: stderr,
	}

	root := &cobra.Command{
		Use:           "authctl",
		Short:         "Sign in to a tenant and inspect the session from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open()
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	f := root.PersistentFlags()
	f.StringVar(&a.opts.configPath, "config", "authctl.yaml", "YAML configuration file")
	f.StringVar(&a.opts.envFile, "env-file", ".env", "dotenv file loaded before AUTHCTL_* variables are read")
	f.StringVar(&a.opts.profile, "profile", "", "profile name (env AUTHCTL_PROFILE)")
	f.StringVar(&a.opts.tenantID, "tenant", "", "tenant id (env AUTHCTL_TENANT_ID)")
	f.StringVar(&a.opts.baseURL, "base-url", "", "API base URL (env AUTHCTL_BASE_URL)")
	f.StringVar(&a.opts.origin, "origin", "", "URL of the page the session belongs to (env AUTHCTL_ORIGIN)")
	f.StringVar(&a.opts.database, "database", "", "SQLite profile database (env AUTHCTL_DATABASE)")
	f.StringVar(&a.opts.out, "out", "text", "output format: text|json")

	root.AddCommand(
		newLoginCmd(a),
		newSendCodeCmd(a),
		newLogoutCmd(a),
		newRefreshCmd(a),
		newWhoamiCmd(a),
		newModeCmd(a),
		newCookiesCmd(a),
	)
	return root, a
}

func newLoginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with one of the tenant's strategies",
	}

	var email, password, totpCode string
	passwordCmd := &cobra.Command{
		Use:   "password",
		Short: "Log in with email or username and password, prompting for a second factor when required",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if password == "" {
				p, err := a.prompt("Password: ")
				if err != nil {
					return err
				}
				password = p
			}
			resp, err := a.client.Login(ctx, goAuthClient.LoginOptions{
				Method:          goAuthClient.MethodPassword,
				EmailOrUsername: email,
				Password:        password,
				Redirect:        goAuthClient.NoRedirect,
			})
			if err != nil {
				return err
			}
			if resp.IsMfaRequired {
				resp, err = a.secondFactor(ctx, totpCode)
				if err != nil {
					return err
				}
			}
			return a.reportLogin(resp)
		},
	}
	passwordCmd.Flags().StringVar(&email, "email", "", "email or username")
	passwordCmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	passwordCmd.Flags().StringVar(&totpCode, "totp", "", "authenticator code used if a second factor is required")
	_ = passwordCmd.MarkFlagRequired("email")

	var code, backup string
	totpCmd := &cobra.Command{
		Use:   "totp",
		Short: "Log in with an authenticator or backup code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := a.client.Login(cmd.Context(), goAuthClient.LoginOptions{
				Method:          goAuthClient.MethodTotp,
				TotpCode:        code,
				BackupCode:      backup,
				EmailOrUsername: email,
				Redirect:        goAuthClient.NoRedirect,
			})
			if err != nil {
				return err
			}
			return a.reportLogin(resp)
		},
	}
	totpCmd.Flags().StringVar(&code, "code", "", "authenticator code")
	totpCmd.Flags().StringVar(&backup, "backup-code", "", "backup code")
	totpCmd.Flags().StringVar(&email, "email", "", "email or username, when no first factor is pending")

	var token, uuid string
	linkCmd := &cobra.Command{
		Use:   "link",
		Short: "Log in with the token and uuid of a magic link",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := a.client.Login(cmd.Context(), goAuthClient.LoginOptions{
				Method:   goAuthClient.MethodLink,
				Token:    token,
				UUID:     uuid,
				Redirect: goAuthClient.NoRedirect,
			})
			if err != nil {
				return err
			}
			return a.reportLogin(resp)
		},
	}
	linkCmd.Flags().StringVar(&token, "token", "", "link token")
	linkCmd.Flags().StringVar(&uuid, "uuid", "", "link uuid")

	var channel, phone, verificationCode string
	codeCmd := &cobra.Command{
		Use:   "code",
		Short: "Log in with a verification code sent by email or SMS",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := a.client.Login(cmd.Context(), goAuthClient.LoginOptions{
				Method:           goAuthClient.MethodVerificationCode,
				Channel:          channel,
				Email:            email,
				PhoneNumber:      phone,
				VerificationCode: verificationCode,
				Redirect:         goAuthClient.NoRedirect,
			})
			if err != nil {
				return err
			}
			return a.reportLogin(resp)
		},
	}
	codeCmd.Flags().StringVar(&channel, "channel", "email", "email|sms")
	codeCmd.Flags().StringVar(&email, "email", "", "email address")
	codeCmd.Flags().StringVar(&phone, "phone", "", "phone number")
	codeCmd.Flags().StringVar(&verificationCode, "code", "", "verification code")

	var provider string
	ssoCmd := &cobra.Command{
		Use:   "sso",
		Short: "Print the provider login URL to open in a browser",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := a.client.Login(cmd.Context(), goAuthClient.LoginOptions{
				Method:   goAuthClient.MethodSSO,
				Provider: provider,
			})
			return err
		},
	}
	ssoCmd.Flags().StringVar(&provider, "provider", "", "google, github, azure, ...")

	cmd.AddCommand(passwordCmd, totpCmd, linkCmd, codeCmd, ssoCmd)
	return cmd
}

// secondFactor completes a pending MFA challenge with a TOTP code.
func (a *app) secondFactor(ctx context.Context, code string) (*goAuthClient.AuthResponse, error) {
	supported := false
	for _, f := range a.client.MFA().SecondFactors() {
		if f.Strategy == "totp" {
			supported = true
			break
		}
	}
	if !supported {
		return nil, errors.New("second factor required but the tenant offers no authenticator factor")
	}
	if code == "" {
		c, err := a.prompt("Authenticator code: ")
		if err != nil {
			return nil, err
		}
		code = c
	}
	return a.client.Login(ctx, goAuthClient.LoginOptions{
		Method:   goAuthClient.MethodTotp,
		TotpCode: code,
		Redirect: goAuthClient.NoRedirect,
	})
}

type loginResult struct {
	Message    string `json:"message,omitempty"`
	LoggedIn   bool   `json:"loggedIn"`
	MFAPending bool   `json:"mfaPending"`
	RedirectTo string `json:"redirectTo,omitempty"`
}

func (a *app) reportLogin(resp *goAuthClient.AuthResponse) error {
	res := loginResult{
		Message:    resp.Message,
		LoggedIn:   resp.Tokens != nil,
		MFAPending: resp.IsMfaRequired,
		RedirectTo: resp.RedirectTo,
	}
	return a.print(res, func(w io.Writer) {
		switch {
		case res.LoggedIn:
			fmt.Fprintf(w, "logged in to %s (profile %s)\n", a.client.TenantID(), a.profile.Name())
		case res.MFAPending:
			fmt.Fprintln(w, "second factor required")
		case res.Message != "":
			fmt.Fprintln(w, res.Message)
		default:
			fmt.Fprintln(w, "ok")
		}
	})
}

func newSendCodeCmd(a *app) *cobra.Command {
	var opts goAuthClient.VerificationCodeOptions
	cmd := &cobra.Command{
		Use:   "send-code",
		Short: "Send a verification code by email or SMS",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := a.client.SendVerificationCode(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return a.print(resp, func(w io.Writer) { fmt.Fprintln(w, orDefault(resp.Message, "code sent")) })
		},
	}
	cmd.Flags().StringVar(&opts.Channel, "channel", "email", "email|sms")
	cmd.Flags().StringVar(&opts.Email, "email", "", "email address")
	cmd.Flags().StringVar(&opts.PhoneNumber, "phone", "", "phone number")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear the profile's tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.Logout(cmd.Context(), goAuthClient.LogoutOptions{Redirect: goAuthClient.NoRedirect}); err != nil {
				return err
			}
			return a.print(map[string]bool{"loggedOut": true}, func(w io.Writer) { fmt.Fprintln(w, "logged out") })
		},
	}
}

func newRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for new tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.client.Refresh(cmd.Context()); err != nil {
				return err
			}
			return a.print(map[string]bool{"refreshed": true}, func(w io.Writer) { fmt.Fprintln(w, "tokens refreshed") })
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	var verify bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the user of the stored ID token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user := a.client.User()
			if user == nil {
				return errors.New("not logged in")
			}
			if verify {
				if _, err := a.client.VerifyAccessToken(); err != nil {
					return fmt.Errorf("access token rejected: %w", err)
				}
			}
			return a.print(user, func(w io.Writer) {
				fmt.Fprintf(w, "user:   %d (%s)\n", user.UserID, user.UserUUID)
				fmt.Fprintf(w, "email:  %s\n", user.Email)
				if user.Username != "" {
					fmt.Fprintf(w, "name:   %s\n", orDefault(user.Name, user.Username))
				}
				fmt.Fprintf(w, "tenant: %s\n", user.TenantID)
				fmt.Fprintf(w, "mode:   %s\n", user.Mode)
			})
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "verify the access token signature (needs a verify key in the config)")
	return cmd
}

func newModeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mode",
		Short: "Look up the tenant's mode from the API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.client.ResolveMode(cmd.Context())
			if err != nil {
				return err
			}
			factors := a.client.MFA().FirstFactors()
			return a.print(map[string]any{"mode": m, "firstFactors": factors}, func(w io.Writer) {
				fmt.Fprintln(w, m)
				for _, f := range factors {
					fmt.Fprintf(w, "  %s/%s\n", f.Strategy, f.Channel)
				}
			})
		},
	}
}

func newCookiesCmd(a *app) *cobra.Command {
	var purge bool
	cmd := &cobra.Command{
		Use:   "cookies",
		Short: "List the cookies stored in the profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if purge {
				return a.profile.Purge(cmd.Context())
			}
			cookies, err := a.profile.Cookies(cmd.Context())
			if err != nil {
				return err
			}
			type row struct {
				Name   string `json:"name"`
				Domain string `json:"domain,omitempty"`
				Path   string `json:"path,omitempty"`
				Secure bool   `json:"secure"`
			}
			rows := make([]row, 0, len(cookies))
			for _, c := range cookies {
				rows = append(rows, row{Name: c.Name, Domain: c.Domain, Path: c.Path, Secure: c.Secure})
			}
			return a.print(rows, func(w io.Writer) {
				for _, r := range rows {
					fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, orDefault(r.Domain, "-"), r.Path)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&purge, "purge", false, "delete every cookie and storage item of the profile")
	return cmd
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}
