package transpiler

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/roivaz/sql-transpiler-mcp/internal/logging"
)

// waitDelay bounds how long Run waits for output pipes after the
// interpreter is killed on context cancellation.
const waitDelay = 2 * time.Second

//go:embed bridge.py
var bridgeScript string

type SQLGlotConfig struct {
	PythonPath string
	Logger     logging.Logger
}

// SQLGlot drives the sqlglot Python library through a short-lived
// interpreter per call. Requests go in as JSON on stdin and replies come back
// as a single JSON document on stdout.
type SQLGlot struct {
	cfg SQLGlotConfig
	log logging.Logger
}

func NewSQLGlot(cfg SQLGlotConfig) *SQLGlot {
	if cfg.PythonPath == "" {
		cfg.PythonPath = "python3"
	}
	return &SQLGlot{cfg: cfg, log: cfg.Logger}
}

type bridgeRequest struct {
	SQL   string `json:"sql"`
	Read  string `json:"read"`
	Write string `json:"write,omitempty"`
}

func (s *SQLGlot) Dialects(ctx context.Context) (Registry, error) {
	reply, err := s.run(ctx, "dialects", nil)
	if err != nil {
		return Registry{}, err
	}
	entries := make(map[string]string)
	reply.Get("dialects").ForEach(func(key, value gjson.Result) bool {
		if key.Str != "" {
			entries[key.Str] = value.String()
		}
		return true
	})
	if len(entries) == 0 {
		return Registry{}, fmt.Errorf("sqlglot reported no dialects")
	}
	return NewRegistry(entries), nil
}

func (s *SQLGlot) Parse(ctx context.Context, sql, read string) error {
	_, err := s.run(ctx, "parse", &bridgeRequest{SQL: sql, Read: read})
	return err
}

func (s *SQLGlot) Transpile(ctx context.Context, sql, read, write string) ([]string, error) {
	reply, err := s.run(ctx, "transpile", &bridgeRequest{SQL: sql, Read: read, Write: write})
	if err != nil {
		return nil, err
	}
	var results []string
	for _, item := range reply.Get("results").Array() {
		results = append(results, item.String())
	}
	return results, nil
}

func (s *SQLGlot) run(ctx context.Context, command string, req *bridgeRequest) (gjson.Result, error) {
	cmd := exec.CommandContext(ctx, s.cfg.PythonPath, "-c", bridgeScript, command)
	cmd.Env = os.Environ()
	cmd.WaitDelay = waitDelay
	if req != nil {
		payload, err := json.Marshal(req)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("encode %s request: %w", command, err)
		}
		cmd.Stdin = bytes.NewReader(payload)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctx.Err() != nil {
		return gjson.Result{}, fmt.Errorf("sqlglot %s: %w", command, ctx.Err())
	}

	trimmed := strings.TrimSpace(stderr.String())
	if trimmed != "" {
		s.log.Debug("sqlglot stderr", "command", command, "output", trimmed)
	}

	reply, decodeErr := decodeReply(stdout.Bytes())
	if decodeErr != nil {
		if runErr != nil {
			s.log.Error(runErr, "sqlglot command failed", "command", command)
			return gjson.Result{}, fmt.Errorf("sqlglot %s: %v: %s", command, runErr, trimmed)
		}
		return gjson.Result{}, fmt.Errorf("sqlglot %s: %w", command, decodeErr)
	}
	if err := replyError(reply); err != nil {
		return gjson.Result{}, err
	}
	return reply, nil
}

func decodeReply(out []byte) (gjson.Result, error) {
	text := strings.TrimSpace(string(out))
	if text == "" {
		return gjson.Result{}, fmt.Errorf("empty reply")
	}
	if !gjson.Valid(text) {
		return gjson.Result{}, fmt.Errorf("malformed reply: %q", text)
	}
	reply := gjson.Parse(text)
	if !reply.Get("ok").Exists() {
		return gjson.Result{}, fmt.Errorf("reply missing ok field")
	}
	return reply, nil
}

func replyError(reply gjson.Result) error {
	if reply.Get("ok").Bool() {
		return nil
	}
	message := reply.Get("message").String()
	if reply.Get("kind").String() == "parse" {
		return &ParseError{Message: message}
	}
	if message == "" {
		message = "sqlglot reported an unknown failure"
	}
	return errors.New(message)
}
