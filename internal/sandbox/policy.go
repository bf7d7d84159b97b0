package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// DefaultDenyPatterns are matched case-insensitively against a whitespace
// normalised command line.
var DefaultDenyPatterns = []string{
	// recursive delete of an absolute path, ~ or $HOME and anything below them
	`\brm\s+(-[a-z-]*\s+)*(-[a-z]*r[a-z]*|--recursive)\s+(-[a-z-]*\s+)*("|')?(/[^\s;&|"']*|~(/[^\s;&|"']*)?|\$home(/[^\s;&|"']*)?)("|')?(\s|$|;|&|\|)`,
	`--no-preserve-root`,
	// privilege escalation
	`(^|[;&|(]\s*|\s)(sudo|doas|pkexec)(\s|$)`,
	`(^|[;&|(]\s*)su(\s|$)`,
	// shutdown and reboot
	`(^|[;&|(]\s*|\s)(shutdown|reboot|halt|poweroff)(\s|$|;)`,
	`\binit\s+[06]\b`,
	`\bsystemctl\s+(poweroff|reboot|halt|kexec)\b`,
	// fork bombs
	`:\s*\(\s*\)\s*\{\s*:\s*\|\s*:\s*&\s*\}\s*;\s*:`,
	// filesystem destruction
	`\bmkfs(\.[a-z0-9]+)?\b`,
	`\bdd\s+.*\bof=/dev/`,
	`>\s*/dev/(sd[a-z]|nvme|hd[a-z]|disk)`,
	`\bformat\s+c:`,
	`\bdel\s+/f\s+/s\s+/q\s+c:`,
}

// PolicyConfig holds the inputs for NewPolicy.
type PolicyConfig struct {
	Root           string
	DenyPatterns   []string
	DefaultTimeout time.Duration
	MaxTimeout     time.Duration
	GracePeriod    time.Duration
	MaxOutputBytes int
}

type denyRule struct {
	source string
	re     *regexp.Regexp
}

// Policy is the immutable sandbox configuration for one session.
type Policy struct {
	root           string
	deny           []denyRule
	defaultTimeout time.Duration
	maxTimeout     time.Duration
	gracePeriod    time.Duration
	maxOutputBytes int
}

// NewPolicy canonicalises the root and compiles the deny patterns.
// A nil DenyPatterns slice selects DefaultDenyPatterns.
func NewPolicy(cfg PolicyConfig) (*Policy, error) {
	root, err := CanonicaliseRoot(cfg.Root)
	if err != nil {
		return nil, err
	}

	patterns := cfg.DenyPatterns
	if patterns == nil {
		patterns = DefaultDenyPatterns
	}
	deny := make([]denyRule, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("invalid deny pattern %q: %w", p, err)
		}
		deny = append(deny, denyRule{source: p, re: re})
	}

	p := &Policy{
		root:           root,
		deny:           deny,
		defaultTimeout: cfg.DefaultTimeout,
		maxTimeout:     cfg.MaxTimeout,
		gracePeriod:    cfg.GracePeriod,
		maxOutputBytes: cfg.MaxOutputBytes,
	}
	if p.defaultTimeout <= 0 {
		p.defaultTimeout = 60 * time.Second
	}
	if p.maxTimeout < p.defaultTimeout {
		p.maxTimeout = p.defaultTimeout
	}
	if p.gracePeriod <= 0 {
		p.gracePeriod = 2 * time.Second
	}
	if p.maxOutputBytes <= 0 {
		p.maxOutputBytes = 64 * 1024
	}
	return p, nil
}

// Root returns the canonical workspace root.
func (p *Policy) Root() string { return p.root }

// DefaultTimeout is used when a command does not request a timeout.
func (p *Policy) DefaultTimeout() time.Duration { return p.defaultTimeout }

// MaxTimeout caps any requested command timeout.
func (p *Policy) MaxTimeout() time.Duration { return p.maxTimeout }

// MaxOutputBytes caps stdout and stderr independently.
func (p *Policy) MaxOutputBytes() int { return p.maxOutputBytes }

// CanonicaliseRoot makes root absolute and resolves its symlinks.
// It fails if the result does not exist or is not a directory.
func CanonicaliseRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace root: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace root symlinks: %w", err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("workspace root does not exist: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("workspace root is not a directory: %s", resolved)
	}
	return resolved, nil
}
