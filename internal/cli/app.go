package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/ihildy/timesheet-cli/internal/api"
	"github.com/ihildy/timesheet-cli/internal/auth"
	"github.com/ihildy/timesheet-cli/internal/config"
	"github.com/ihildy/timesheet-cli/internal/keyring"
	"github.com/ihildy/timesheet-cli/internal/logging"
	"github.com/ihildy/timesheet-cli/internal/session"
	"github.com/ihildy/timesheet-cli/internal/storage"
	"github.com/ihildy/timesheet-cli/internal/weeklog"
)

type App struct {
	Cfg             config.Config
	CfgPath         string
	JSONOutput      bool
	BaseURLOverride string
	EmailOverride   string
	Verbose         bool
	Stdout          io.Writer
	Stderr          io.Writer
	Stdin           io.Reader
	Logger          *zap.Logger
	Store           *storage.Store
}

func NewApp() *App {
	return &App{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Stdin:  os.Stdin,
		Logger: zap.NewNop(),
	}
}

func (a *App) LoadConfig() error {
	cfg, path, err := config.Load()
	if err != nil {
		return err
	}
	a.Cfg = cfg
	a.CfgPath = path
	if a.Store == nil {
		a.Store = storage.New(config.Dir(path))
	}
	return nil
}

func (a *App) SaveConfig() error {
	return config.Save(a.Cfg, a.CfgPath)
}

func (a *App) InitLogger() error {
	level := a.Cfg.Log.Level
	if a.Verbose {
		level = "debug"
	}
	logger, err := logging.New(level, a.Cfg.Log.Format)
	if err != nil {
		return err
	}
	a.Logger = logger
	return nil
}

func (a *App) BaseURL() string {
	if strings.TrimSpace(a.BaseURLOverride) != "" {
		return strings.TrimRight(strings.TrimSpace(a.BaseURLOverride), "/")
	}
	return strings.TrimRight(a.Cfg.BaseURL, "/")
}

func (a *App) Email() string {
	if strings.TrimSpace(a.EmailOverride) != "" {
		return strings.TrimSpace(a.EmailOverride)
	}
	return strings.TrimSpace(a.Cfg.Email)
}

// NewClient builds an API client, attaching the stored token for this base
// URL when there is one.
func (a *App) NewClient(ctx context.Context) (*api.Client, error) {
	token, err := keyring.LoadToken(a.BaseURL())
	if err != nil && !errors.Is(err, keyring.ErrNoToken) {
		a.Logger.Warn("keyring unavailable, continuing without token", zap.Error(err))
	}
	return a.newClientWithToken(ctx, token), nil
}

func (a *App) newClientWithToken(ctx context.Context, token string) *api.Client {
	httpClient := auth.NewHTTPClient(ctx, token, a.Cfg.Timeout())
	return api.New(a.BaseURL(), a.Cfg.APIPrefix, httpClient)
}

func (a *App) sessionOptions() (session.Options, error) {
	shift, err := weeklog.ParseShiftModel(a.Cfg.ShiftModel)
	if err != nil {
		return session.Options{}, err
	}
	keys, err := weeklog.ParseKeyFormat(a.Cfg.KeyFormat)
	if err != nil {
		return session.Options{}, err
	}
	audit, err := weeklog.ParseAuditPolicy(a.Cfg.AuditPolicy)
	if err != nil {
		return session.Options{}, err
	}
	return session.Options{
		Email:     a.Email(),
		Shift:     shift,
		Keys:      keys,
		Audit:     audit,
		Approvals: a.Cfg.Approvals,
	}, nil
}

func (a *App) NewSession(ctx context.Context) (*session.Session, error) {
	client, err := a.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := a.sessionOptions()
	if err != nil {
		return nil, err
	}
	return session.New(client, opts, a.Logger), nil
}

// OpenWorkspace returns a session holding the week saved by `week load`.
func (a *App) OpenWorkspace(ctx context.Context) (*session.Session, error) {
	ws, err := a.Store.Load()
	if err != nil {
		return nil, err
	}
	s, err := a.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Restore(ws); err != nil {
		return nil, err
	}
	return s, nil
}

func (a *App) SaveWorkspace(s *session.Session) error {
	ws := s.Workspace()
	if ws == nil {
		return storage.ErrNoWorkspace
	}
	if err := a.Store.Save(ws); err != nil {
		return fmt.Errorf("save workspace: %w", err)
	}
	return nil
}

func (a *App) IsInteractive() bool {
	stdinFile, stdinOK := a.Stdin.(*os.File)
	stdoutFile, stdoutOK := a.Stdout.(*os.File)
	if !stdinOK || !stdoutOK {
		return false
	}
	return term.IsTerminal(int(stdinFile.Fd())) && term.IsTerminal(int(stdoutFile.Fd()))
}

func (a *App) PromptConfirm(message string) (bool, error) {
	if !a.IsInteractive() {
		return false, errors.New("confirmation required but terminal is non-interactive; use --yes")
	}
	fmt.Fprintf(a.Stderr, "%s [y/N]: ", message)
	reader := bufio.NewReader(a.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
