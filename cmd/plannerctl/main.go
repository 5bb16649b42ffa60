// Command plannerctl exercises the PlannerHub auth flow from a terminal:
// sign in, inspect the stored session, fetch tasks, rotate tokens and sign
// out. The durable tier lives in a state file (or Redis) so a remembered
// session survives between invocations, mirroring the browser's two-tier
// storage.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/plannerhub/authflow"
	"github.com/plannerhub/authflow/session"
	"github.com/redis/go-redis/v9"
)

const usage = `usage: plannerctl [flags] <command> [args]

commands:
  login            sign in and store the session
  status           show the stored session
  tasks            fetch the task list with the stored session
  refresh          rotate the stored token pair
  signout          revoke the refresh token and clear the session
  forgot <email>   request a password reset link
  reset <token>    redeem a reset token for a new password

flags:
`

func main() {
	var (
		configPath = flag.String("config", "", "path to an authflow YAML config")
		baseURL    = flag.String("base-url", "http://127.0.0.1:8000", "planner service base URL")
		statePath  = flag.String("state", defaultStatePath(), "durable session state file")
		redisAddr  = flag.String("redis-addr", "", "use redis for the durable tier instead of the state file")
		events     = flag.Bool("events", false, "print flow events as JSON lines on stderr")
	)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath, *baseURL)
	if err != nil {
		fatal(err)
	}
	// The CLI has no success screen to linger on.
	cfg.UX.LoginRedirectDelay = 0
	cfg.UX.SignupResetDelay = 0
	if *events {
		cfg.Events = authflow.EventsConfig{Enabled: true, BufferSize: 64, DropIfFull: true}
	}

	durable, closeTier, err := durableTier(*redisAddr, *statePath)
	if err != nil {
		fatal(err)
	}
	defer closeTier()

	b := authflow.New().
		WithConfig(cfg).
		WithDurableTier(durable).
		WithNavigator(printNavigator{})
	if *events {
		b = b.WithEventSink(authflow.NewJSONWriterSink(os.Stderr))
	}

	ctrl, err := b.Build()
	if err != nil {
		fatal(err)
	}
	defer ctrl.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd := flag.Arg(0); cmd {
	case "login":
		err = runLogin(ctx, ctrl)
	case "status":
		err = runStatus(ctx, ctrl)
	case "tasks":
		err = runTasks(ctx, ctrl)
	case "refresh":
		err = runRefresh(ctx, ctrl)
	case "signout":
		ctrl.Fetcher().SignOut(ctx)
		fmt.Println("signed out")
	case "forgot":
		err = runForgot(ctx, ctrl)
	case "reset":
		err = runReset(ctx, ctrl)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
}

func loadConfig(path, baseURL string) (authflow.Config, error) {
	if path != "" {
		return authflow.LoadConfig(path)
	}
	cfg := authflow.DefaultConfig()
	cfg.Service.BaseURL = baseURL
	return cfg, nil
}

func durableTier(redisAddr, statePath string) (session.Tier, func(), error) {
	if redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		return session.NewRedisTier(client, "plannerctl"), func() { _ = client.Close() }, nil
	}
	if err := os.MkdirAll(filepath.Dir(statePath), 0o700); err != nil {
		return nil, nil, err
	}
	return session.NewFileTier(statePath), func() {}, nil
}

func runLogin(ctx context.Context, ctrl *authflow.Controller) error {
	reader := bufio.NewReader(os.Stdin)

	identifier, err := prompt(reader, "email or username: ")
	if err != nil {
		return err
	}
	password, err := prompt(reader, "password: ")
	if err != nil {
		return err
	}
	answer, err := prompt(reader, "remember me? [y/N]: ")
	if err != nil {
		return err
	}
	remember := strings.HasPrefix(strings.ToLower(answer), "y")

	out, err := ctrl.SubmitLogin(ctx, authflow.Credentials{
		Identifier: identifier,
		Password:   password,
	}, remember)
	if err != nil {
		return err
	}

	printToast(out.Toast)
	for _, fe := range out.FieldErrors {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", fe.Field, fe.Message)
	}
	return nil
}

func runStatus(ctx context.Context, ctrl *authflow.Controller) error {
	sess, err := ctrl.Store().Load(ctx)
	if err != nil {
		return err
	}
	if sess == nil {
		fmt.Println("no session")
		return nil
	}

	fmt.Printf("identifier:  %s\n", sess.Identifier)
	fmt.Printf("established: %s\n", sess.EstablishedAt.Format(time.RFC3339))
	fmt.Printf("durable:     %v\n", ctrl.Store().Durable(ctx))

	info, err := session.InspectAccessToken(sess.AccessToken)
	if err != nil {
		fmt.Printf("token:       opaque (%v)\n", err)
		return nil
	}
	if info.Subject != "" {
		fmt.Printf("subject:     %s\n", info.Subject)
	}
	if !info.ExpiresAt.IsZero() {
		fmt.Printf("expires:     %s\n", info.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

func runTasks(ctx context.Context, ctrl *authflow.Controller) error {
	body, err := ctrl.Fetcher().FetchTasks(ctx)
	if err != nil {
		return err
	}
	fmt.Println(string(body))
	return nil
}

func runRefresh(ctx context.Context, ctrl *authflow.Controller) error {
	if err := ctrl.Fetcher().Refresh(ctx); err != nil {
		return err
	}
	fmt.Println("token pair rotated")
	return nil
}

func runForgot(ctx context.Context, ctrl *authflow.Controller) error {
	if flag.NArg() < 2 {
		return fmt.Errorf("usage: plannerctl forgot <email>")
	}
	out, err := ctrl.ForgotPassword(ctx, flag.Arg(1))
	if err != nil {
		return err
	}
	printToast(out.Toast)
	return nil
}

func runReset(ctx context.Context, ctrl *authflow.Controller) error {
	if flag.NArg() < 2 {
		return fmt.Errorf("usage: plannerctl reset <token>")
	}

	reader := bufio.NewReader(os.Stdin)
	password, err := prompt(reader, "new password: ")
	if err != nil {
		return err
	}
	confirm, err := prompt(reader, "confirm password: ")
	if err != nil {
		return err
	}

	out, err := ctrl.SubmitPasswordReset(ctx, flag.Arg(1), password, confirm)
	if err != nil {
		return err
	}
	printToast(out.Toast)
	for _, fe := range out.FieldErrors {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", fe.Field, fe.Message)
	}
	return nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func printToast(t authflow.Toast) {
	if !t.Visible {
		return
	}
	fmt.Printf("%s [%s] %s\n", t.Icon, t.Severity, t.Message)
}

type printNavigator struct{}

func (printNavigator) Replace(route string) {
	fmt.Printf("-> %s\n", route)
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".plannerctl/session.json"
	}
	return filepath.Join(home, ".plannerctl", "session.json")
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "plannerctl:", err)
	os.Exit(1)
}
