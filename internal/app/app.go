package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"punchclock/internal/config"
	"punchclock/internal/encryption"
	"punchclock/internal/store"
	"punchclock/internal/timeclock"
)

// App is the application layer between the CLI and the timeclock service.
// It constructs all dependencies from config, exposes operations that accept
// raw strings, and manages store and log lifecycles on Close.
type App struct {
	cfg       *config.Config
	store     timeclock.Store
	encryptor encryption.Encryptor
	service   *timeclock.Service
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config. operation
// identifies the CLI command being run (e.g. "ClockIn", "ResetWeek") and
// tags every log line it produces. The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	opID := time.Now().UTC().Format("20060102T150405Z") + "-" + operation
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	adapter := &slogAdapter{l: logger}

	st, err := store.NewStoreFromConfig(cfg.Storage, cfg.InstallID, adapter)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating store: %w", err)
	}

	svc := timeclock.NewService(st, timeclock.RealClock{}, adapter)

	return &App{
		cfg:       cfg,
		store:     st,
		encryptor: encryption.NewAgeEncryptor(cfg.Encryption),
		service:   svc,
		logFile:   logFile,
	}, nil
}

// Service exposes the timeclock core for read-only consumers such as the
// dashboard.
func (a *App) Service() *timeclock.Service { return a.service }

// Encryptor exposes the configured export encryptor.
func (a *App) Encryptor() encryption.Encryptor { return a.encryptor }

// ResolveUser picks the acting username: an explicit flag value wins, then
// the PUNCH_USER environment variable, then the config default.
func (a *App) ResolveUser(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv("PUNCH_USER"); env != "" {
		return env, nil
	}
	if a.cfg.DefaultUser != "" {
		return a.cfg.DefaultUser, nil
	}
	return "", fmt.Errorf("no user selected: pass --user, set PUNCH_USER, or set default_user in the config")
}

// ExportCSV writes the user's history as CSV to path. When encrypt is true
// the output is age-encrypted with the configured public key and the file
// gets an .age suffix unless it already has one.
func (a *App) ExportCSV(user, path string, encrypt bool) (string, error) {
	if !encrypt {
		f, err := os.Create(path)
		if err != nil {
			return "", fmt.Errorf("creating export file: %w", err)
		}
		defer f.Close()
		if err := a.service.ExportCSV(user, f); err != nil {
			return "", err
		}
		return path, nil
	}

	if !a.encryptor.IsConfigured() {
		return "", fmt.Errorf("encryption keys not configured: run `punch keys init` first")
	}

	pr, pw := io.Pipe()
	errCh := make(chan error, 1)
	go func() {
		err := a.service.ExportCSV(user, pw)
		pw.CloseWithError(err)
		errCh <- err
	}()

	outPath := path
	if !strings.HasSuffix(outPath, ".age") {
		outPath += ".age"
	}
	out, err := os.Create(outPath)
	if err != nil {
		pr.Close()
		<-errCh
		return "", fmt.Errorf("creating export file: %w", err)
	}
	defer out.Close()

	encErr := a.encryptor.Encrypt(pr, out)
	pr.Close()
	if exportErr := <-errCh; exportErr != nil {
		os.Remove(outPath)
		return "", exportErr
	}
	if encErr != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("encrypting export: %w", encErr)
	}
	return outPath, nil
}

// DecryptFile decrypts an age-encrypted export using the passphrase-locked
// private key and writes the plaintext to outPath.
func (a *App) DecryptFile(inPath, outPath, passphrase string) error {
	ctx, err := a.encryptor.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking private key: %w", err)
	}

	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("opening encrypted file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	if err := ctx.Decrypt(in, out); err != nil {
		os.Remove(outPath)
		return err
	}
	return nil
}

// Close releases the store and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
