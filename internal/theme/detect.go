package theme

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/term"
)

var oscColorRe = regexp.MustCompile(`\]11;rgb:([0-9a-fA-F]+)/([0-9a-fA-F]+)/([0-9a-fA-F]+)`)

// DetectBackground queries the terminal background color with OSC 11
// and returns the default dark or light theme name for it. The query
// runs before the TUI takes the terminal; if the terminal does not
// answer within the timeout the caller falls back to a fixed default.
func DetectBackground(timeout time.Duration) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal")
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return "", err
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	if _, err := os.Stdout.WriteString("\x1b]11;?\x07"); err != nil {
		return "", err
	}

	type reply struct {
		data string
		err  error
	}
	replies := make(chan reply, 1)
	go func() {
		buf := make([]byte, 64)
		n, err := os.Stdin.Read(buf)
		replies <- reply{data: string(buf[:n]), err: err}
	}()

	select {
	case r := <-replies:
		if r.err != nil {
			return "", r.err
		}
		return themeForReply(r.data)
	case <-time.After(timeout):
		return "", errors.New("no OSC 11 reply")
	}
}

// themeForReply parses an OSC 11 response such as
// "\x1b]11;rgb:2828/2a2a/3636\x07" and classifies its luminance.
func themeForReply(reply string) (string, error) {
	m := oscColorRe.FindStringSubmatch(reply)
	if m == nil {
		return "", fmt.Errorf("unrecognized OSC 11 reply %q", reply)
	}

	r, err := colorComponent(m[1])
	if err != nil {
		return "", err
	}
	g, err := colorComponent(m[2])
	if err != nil {
		return "", err
	}
	b, err := colorComponent(m[3])
	if err != nil {
		return "", err
	}

	luminance := 0.2126*r + 0.7152*g + 0.0722*b
	if luminance > 0.5 {
		return DefaultLight(), nil
	}
	return DefaultDark(), nil
}

// colorComponent scales a 1-4 digit hex component to [0, 1]. Terminals
// commonly answer with 4 digits per channel but 2 is also seen.
func colorComponent(hexDigits string) (float64, error) {
	if len(hexDigits) == 0 || len(hexDigits) > 4 {
		return 0, fmt.Errorf("bad color component %q", hexDigits)
	}
	v, err := strconv.ParseUint(hexDigits, 16, 32)
	if err != nil {
		return 0, err
	}
	scale := float64(uint64(1)<<(4*len(hexDigits))) - 1
	return float64(v) / scale, nil
}
