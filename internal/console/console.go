// Package console implements the interactive plugin console.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"firestige.xyz/protosy/internal/log"
	"firestige.xyz/protosy/pkg/plugin"
)

// Registry is the control surface the console drives.
type Registry interface {
	Load(path string) error
	Unload(name string) error
	UnloadAt(index int) error
	List() []plugin.Plugin
}

const helpText = `commands:
  load [path]        load and activate a plugin library
  unload [name]      unload the first plugin with this name
  unload_at [index]  unload the plugin at this position
  list               show loaded plugins
  help               show this text
  exit               leave the console`

// Console reads one command at a time and applies it to a Registry. A
// command given without its argument asks for it on the next line.
type Console struct {
	registry  Registry
	in        *bufio.Scanner
	out       io.Writer
	prompt    string
	argPrompt string
	color     bool
	styles    styles

	lines   <-chan string
	scanErr error
}

type Option func(*Console)

func WithPrompts(prompt, argPrompt string) Option {
	return func(c *Console) {
		c.prompt, c.argPrompt = prompt, argPrompt
	}
}

func WithColor(color bool) Option {
	return func(c *Console) {
		c.color = color
	}
}

func New(registry Registry, in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		registry:  registry,
		in:        bufio.NewScanner(in),
		out:       out,
		prompt:    "> ",
		argPrompt: ">> ",
		color:     true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.styles = newStyles(out, c.color)
	return c
}

// Run processes commands until exit, end of input or ctx is done. Command
// failures are logged and never end the loop. A cancelled ctx ends Run even
// while it waits for input.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.lines = c.scan(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := c.readLine(ctx, c.prompt)
		if err != nil {
			return c.stopErr(err)
		}

		command, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		arg = strings.TrimSpace(arg)

		switch strings.ToLower(command) {
		case "":
		case "load":
			if arg, err = c.argument(ctx, arg); err != nil {
				return c.stopErr(err)
			}
			c.report("load", arg, c.registry.Load(arg))
		case "unload":
			if arg, err = c.argument(ctx, arg); err != nil {
				return c.stopErr(err)
			}
			c.report("unload", arg, c.registry.Unload(arg))
		case "unload_at":
			if arg, err = c.argument(ctx, arg); err != nil {
				return c.stopErr(err)
			}
			index, err := strconv.Atoi(arg)
			if err != nil {
				c.report("unload_at", arg, fmt.Errorf("invalid index %q: %w", arg, err))
				continue
			}
			c.report("unload_at", arg, c.registry.UnloadAt(index))
		case "list":
			c.list()
		case "help":
			c.println(c.styles.muted, helpText)
		case "exit", "quit":
			return nil
		default:
			c.println(c.styles.fail, fmt.Sprintf("unknown command %q, try help", command))
		}
	}
}

// scan feeds input lines to the returned channel from its own goroutine,
// so a blocked read never holds up cancellation. The channel is closed at
// end of input or once ctx is done.
func (c *Console) scan(ctx context.Context) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for c.in.Scan() {
			select {
			case lines <- c.in.Text():
			case <-ctx.Done():
				return
			}
		}
		c.scanErr = c.in.Err()
	}()
	return lines
}

// readLine prints prompt and waits for the next line. It returns io.EOF at
// end of input and ctx.Err() once ctx is done.
func (c *Console) readLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(c.out, c.styles.prompt.Render(prompt))
	select {
	case line, ok := <-c.lines:
		if !ok {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// stopErr maps the error that ended reading to the result of Run. End of
// input is a clean stop unless the scanner failed.
func (c *Console) stopErr(err error) error {
	if errors.Is(err, io.EOF) {
		return c.scanErr
	}
	return err
}

// argument returns arg, or asks for it when empty.
func (c *Console) argument(ctx context.Context, arg string) (string, error) {
	if arg != "" {
		return arg, nil
	}
	line, err := c.readLine(ctx, c.argPrompt)
	return strings.TrimSpace(line), err
}

func (c *Console) report(command, arg string, err error) {
	if err != nil {
		log.GetLogger().WithFields(map[string]interface{}{"command": command, "arg": arg}).WithError(err).Warn("Command failed")
		c.println(c.styles.fail, "error: "+err.Error())
		return
	}
	c.println(c.styles.ok, "ok")
}

func (c *Console) list() {
	plugins := c.registry.List()
	if len(plugins) == 0 {
		c.println(c.styles.muted, "no plugins loaded")
		return
	}
	for i, p := range plugins {
		fmt.Fprintf(c.out, "%s %s\n", c.styles.index.Render(fmt.Sprintf("[%d]", i)), p.Name())
	}
}

// println renders each line on its own so lipgloss does not pad them to a
// common width.
func (c *Console) println(style lipgloss.Style, text string) {
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintln(c.out, style.Render(line))
	}
}
