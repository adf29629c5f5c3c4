package input

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	apperrors "github.com/ksyq12/vhostprov/internal/errors"
)

// scriptedPrompter answers prompts from a fixed list and records labels.
type scriptedPrompter struct {
	answers []string
	labels  []string
	err     error
}

func (s *scriptedPrompter) Prompt(label string) (string, error) {
	s.labels = append(s.labels, label)
	if s.err != nil {
		return "", s.err
	}
	if len(s.answers) == 0 {
		return "", nil
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

func TestCollect(t *testing.T) {
	t.Run("email and header", func(t *testing.T) {
		p := &scriptedPrompter{answers: []string{" ops@example.com ", "Acme"}}
		got, err := Collect(p)
		if err != nil {
			t.Fatalf("Collect failed: %v", err)
		}
		if got.Email != "ops@example.com" || got.PoweredBy != "Acme" {
			t.Errorf("unexpected answers %+v", got)
		}
		if len(p.labels) != 2 {
			t.Errorf("expected 2 prompts, got %d", len(p.labels))
		}
	})

	t.Run("empty header is kept empty", func(t *testing.T) {
		p := &scriptedPrompter{answers: []string{"ops@example.com", ""}}
		got, err := Collect(p)
		if err != nil {
			t.Fatalf("Collect failed: %v", err)
		}
		if got.PoweredBy != "" {
			t.Errorf("expected empty header, got %q", got.PoweredBy)
		}
	})

	t.Run("empty email aborts before header prompt", func(t *testing.T) {
		p := &scriptedPrompter{answers: []string{"", "Acme"}}
		_, err := Collect(p)
		if !apperrors.Is(err, apperrors.ErrMissingInput) {
			t.Fatalf("expected missing input error, got %v", err)
		}
		if len(p.labels) != 1 {
			t.Errorf("header should not be prompted, got %d prompts", len(p.labels))
		}
	})

	t.Run("invalid header", func(t *testing.T) {
		p := &scriptedPrompter{answers: []string{"ops@example.com", `bad"value`}}
		if _, err := Collect(p); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("prompt failure", func(t *testing.T) {
		p := &scriptedPrompter{err: errors.New("^C")}
		if _, err := Collect(p); err == nil {
			t.Error("expected error")
		}
	})
}

func TestLinePrompter(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(NewStringReader("ops@example.com\r\n"), &out)

	got, err := p.Prompt("Email")
	if err != nil {
		t.Fatalf("Prompt failed: %v", err)
	}
	if got != "ops@example.com" {
		t.Errorf("expected trimmed line, got %q", got)
	}
	if out.String() != "Email: " {
		t.Errorf("unexpected prompt output %q", out.String())
	}

	// Input exhausted: treated as an empty answer.
	got, err = p.Prompt("Header")
	if err != nil {
		t.Fatalf("Prompt at EOF failed: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty answer at EOF, got %q", got)
	}
}

func TestLinePrompterFeedsCollect(t *testing.T) {
	p := NewLinePrompter(NewBufferedReader(strings.NewReader("ops@example.com\n\n")), nil)
	got, err := Collect(p)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if got.Email != "ops@example.com" || got.PoweredBy != "" {
		t.Errorf("unexpected answers %+v", got)
	}
}

func TestNewPrompterNonTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString("ops@example.com\n"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		t.Fatal(err)
	}

	p, ok := NewPrompter(f, nil).(*LinePrompter)
	if !ok {
		t.Fatal("regular file should get a LinePrompter")
	}

	// Answers come from the file passed in, not from os.Stdin.
	got, err := p.Prompt("Email")
	if err != nil {
		t.Fatalf("Prompt failed: %v", err)
	}
	if got != "ops@example.com" {
		t.Errorf("expected answer from the given file, got %q", got)
	}
}
