package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/KaramelBytes/suburbscope/internal/dataset"
)

var browseFilters filterFlags

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Pick a suburb from the filtered selection with the arrow keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		c, sel, err := browseFilters.apply(cmd, ds)
		if err != nil {
			return err
		}
		names := sel.SuburbNames()
		if len(names) == 0 {
			return fmt.Errorf("no suburbs match the filters (%s)", describe(c))
		}
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return errors.New("browse needs an interactive terminal; use \"show <suburb>\" instead")
		}
		return browseTerminal(fd, sel, names)
	},
}

// browseTerminal runs the picker in raw mode and drops back to cooked mode
// while a detail panel is on screen.
func browseTerminal(fd int, sel *dataset.Dataset, names []string) error {
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("interactive selection not supported on this terminal: %w", err)
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	p := &picker{names: names, out: os.Stdout}
	reader := bufio.NewReader(os.Stdin)
	return p.run(reader, func(name string) error {
		_ = term.Restore(fd, oldState)
		row, err := sel.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(detailPanel(row))
		fmt.Print("\n(press Enter to return)")
		_, _ = bufio.NewReader(os.Stdin).ReadBytes('\n')

		oldState, err = term.MakeRaw(fd)
		if err != nil {
			return err
		}
		reader.Reset(os.Stdin)
		return nil
	})
}

type key int

const (
	keyOther key = iota
	keyUp
	keyDown
	keyEnter
	keyQuit
)

// readKey decodes one key press from a raw-mode terminal: ANSI arrow
// sequences, Windows console arrow codes, Enter, Esc, q and Ctrl-C.
func readKey(r *bufio.Reader) (key, error) {
	b1, err := r.ReadByte()
	if err != nil {
		return keyQuit, err
	}
	// Windows console arrow sequences (0 or 224, then code)
	if b1 == 0 || b1 == 224 {
		b2, err := r.ReadByte()
		if err != nil {
			return keyQuit, err
		}
		switch b2 {
		case 72:
			return keyUp, nil
		case 80:
			return keyDown, nil
		case 13:
			return keyEnter, nil
		}
		return keyOther, nil
	}
	switch b1 {
	case 27: // ESC or CSI sequence
		if r.Buffered() == 0 {
			return keyQuit, nil
		}
		b2, err := r.ReadByte()
		if err != nil {
			return keyQuit, err
		}
		if b2 != '[' || r.Buffered() == 0 {
			return keyOther, nil
		}
		b3, err := r.ReadByte()
		if err != nil {
			return keyQuit, err
		}
		switch b3 {
		case 'A':
			return keyUp, nil
		case 'B':
			return keyDown, nil
		}
		return keyOther, nil
	case 'k':
		return keyUp, nil
	case 'j':
		return keyDown, nil
	case '\r', '\n':
		return keyEnter, nil
	case 3, 'q': // Ctrl-C
		return keyQuit, nil
	}
	return keyOther, nil
}

// picker is the list half of browse: a cursor over suburb names.
type picker struct {
	names    []string
	selected int
	out      io.Writer
}

func (p *picker) redraw() {
	// Clear screen (ANSI reset to top + clear screen). Raw mode needs \r\n.
	fmt.Fprint(p.out, "\033[H\033[2J")
	for i, name := range p.names {
		prefix := "  "
		if i == p.selected {
			prefix = "> "
		}
		fmt.Fprint(p.out, prefix+name+"\r\n")
	}
	fmt.Fprint(p.out, "(↑/↓ to navigate, Enter to view details, Esc to quit)\r\n")
}

// run processes key presses until quit or EOF, calling enter for the
// highlighted suburb on Enter.
func (p *picker) run(r *bufio.Reader, enter func(name string) error) error {
	p.redraw()
	for {
		k, err := readKey(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		switch k {
		case keyUp:
			if p.selected > 0 {
				p.selected--
				p.redraw()
			}
		case keyDown:
			if p.selected < len(p.names)-1 {
				p.selected++
				p.redraw()
			}
		case keyEnter:
			if err := enter(p.names[p.selected]); err != nil {
				return err
			}
			p.redraw()
		case keyQuit:
			fmt.Fprint(p.out, "\r\n")
			return nil
		}
	}
}

func init() {
	rootCmd.AddCommand(browseCmd)
	browseFilters.register(browseCmd)
}
