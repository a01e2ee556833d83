package auth

import (
	"bufio"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

var ErrMissingCredentials = errors.New("username and password are required")

// Prompter asks for credentials that were not supplied on the command line.
type Prompter struct {
	In  io.Reader
	Out io.Writer

	// ReadPassword reads without echo. Nil falls back to reading a line
	// from In, which is what happens when stdin is not a terminal.
	ReadPassword func() (string, error)

	reader *bufio.Reader
}

// NewTerminalPrompter wires the prompter to the process's stdin/stdout and
// hides password input when stdin is a TTY.
func NewTerminalPrompter() *Prompter {
	p := &Prompter{In: os.Stdin, Out: os.Stdout}
	fd := os.Stdin.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		p.ReadPassword = func() (string, error) {
			b, err := term.ReadPassword(int(fd))
			fmt.Fprintln(p.Out)
			return string(b), err
		}
	}
	return p
}

// Resolve returns the username and password, prompting for whichever is empty.
func (p *Prompter) Resolve(username, password string) (string, string, error) {
	var err error
	if username == "" {
		fmt.Fprint(p.Out, "Enter user name: ")
		if username, err = p.readLine(); err != nil {
			return "", "", fmt.Errorf("read username: %w", err)
		}
	}
	if username == "" {
		return "", "", fmt.Errorf("%w: username must be supplied", ErrMissingCredentials)
	}

	if password == "" {
		fmt.Fprintf(p.Out, "Enter password for user %s: ", username)
		if p.ReadPassword != nil {
			password, err = p.ReadPassword()
		} else {
			password, err = p.readLine()
		}
		if err != nil {
			return "", "", fmt.Errorf("read password: %w", err)
		}
	}
	if password == "" {
		return "", "", fmt.Errorf("%w: password must be supplied", ErrMissingCredentials)
	}
	return username, password, nil
}

func (p *Prompter) readLine() (string, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// LoadClientCertificate loads a PEM certificate and key for PKI
// authentication. An empty keyFile means the key is bundled in certFile.
func LoadClientCertificate(certFile, keyFile string) (tls.Certificate, error) {
	if certFile == "" {
		return tls.Certificate{}, errors.New("certFile path is required for PKI")
	}
	if err := requireFile(certFile, "certFile"); err != nil {
		return tls.Certificate{}, err
	}
	if keyFile == "" {
		keyFile = certFile
	} else if err := requireFile(keyFile, "keyFile"); err != nil {
		return tls.Certificate{}, err
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("load client certificate: %w", err)
	}
	return cert, nil
}

func requireFile(path, label string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		abs, _ := filepath.Abs(path)
		if err == nil {
			err = os.ErrNotExist
		}
		return fmt.Errorf("cannot find %s at %s: %w", label, abs, err)
	}
	return nil
}
