package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/escaper/internal/errors"
	"github.com/vango-dev/escaper/pkg/escape"
	"github.com/vango-dev/escaper/pkg/strbuf"
)

func escapeCmd() *cobra.Command {
	var (
		context string
		schemes []string
	)

	cmd := &cobra.Command{
		Use:   "escape [text...]",
		Short: "Escape text for an output context",
		Long: `Escape text for an output context.

With arguments, the arguments are joined by spaces and escaped as one
value. Without arguments, standard input is escaped line by line.

Contexts: none, html, script (js), url, css_url, function. Several may be
joined with '|'; function wins over the others.

Examples:
  escaper escape --context html '<b>hi</b>'
  escaper escape -c url 'javascript:alert(1)'
  cat urls.txt | escaper escape -c css_url --schemes https`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := escape.ParseContext(context)
			if err != nil {
				return err
			}
			policy, err := escape.NewPolicy(schemes...)
			if err != nil {
				return err
			}
			engine := escape.NewEngine(policy, cliLogger(cmd))
			fn := func(s string) (string, error) { return engine.Escape(c, s) }
			return runLines(cmd, args, fn)
		},
	}

	cmd.Flags().StringVarP(&context, "context", "c", "html", "Output context")
	cmd.Flags().StringSliceVar(&schemes, "schemes", escape.DefaultPolicy().Schemes(), "Allowed URL schemes")

	return cmd
}

func unescapeCmd() *cobra.Command {
	var (
		context    string
		introducer string
	)

	cmd := &cobra.Command{
		Use:   "unescape [text...]",
		Short: "Reverse an escaper",
		Long: `Reverse an escaper.

Contexts: html, url (form encoding, '+' is a space), url_rfc, script,
css_url. --introducer decodes <introducer>HH triplets instead.

Examples:
  escaper unescape --context url 'a+b%2Fc'
  escaper unescape --introducer = 'a=3Db'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("introducer") && cmd.Flags().Changed("context") {
				return errors.New(errors.CodeInvalidArg).
					WithDetail("--context and --introducer are mutually exclusive")
			}
			fn := func(s string) (string, error) { return escape.UnescapeNamed(context, s) }
			if cmd.Flags().Changed("introducer") {
				fn = func(s string) (string, error) { return escape.UnescapeIntroducer(introducer, s) }
			}
			return runLines(cmd, args, fn)
		},
	}

	cmd.Flags().StringVarP(&context, "context", "c", "html", "Escaper to reverse")
	cmd.Flags().StringVarP(&introducer, "introducer", "i", "", "Escape introducer byte")

	return cmd
}

func validateURLCmd() *cobra.Command {
	var (
		css     bool
		schemes []string
		strict  bool
	)

	cmd := &cobra.Command{
		Use:   "validate-url [url...]",
		Short: "Validate URLs against the scheme allow-list",
		Long: `Validate URLs against the scheme allow-list.

Accepted URLs are printed with unsafe bytes percent-encoded; rejected URLs
print as "#". With --strict the command fails if any URL was rejected.

Examples:
  escaper validate-url 'https://example.com/a b'
  escaper validate-url --css 'http://x.com/a)b'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := escape.NewPolicy(schemes...)
			if err != nil {
				return err
			}
			engine := escape.NewEngine(policy, cliLogger(cmd))

			rejected := 0
			fn := func(s string) (string, error) {
				if !policy.HasSecureProtocol(s) {
					rejected++
				}
				if css {
					return engine.ValidateCSSURL(s), nil
				}
				return engine.ValidateURL(s), nil
			}
			if len(args) == 0 {
				if err := runLines(cmd, nil, fn); err != nil {
					return err
				}
			} else {
				w := cmd.OutOrStdout()
				for _, arg := range args {
					out, _ := fn(arg)
					fmt.Fprintln(w, out)
				}
			}

			if strict && rejected > 0 {
				return errors.New(errors.CodeInvalidArg).
					WithDetailf("%d URL(s) rejected by the scheme allow-list", rejected)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&css, "css", false, "Validate for a CSS url() value")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail if any URL is rejected")
	cmd.Flags().StringSliceVar(&schemes, "schemes", escape.DefaultPolicy().Schemes(), "Allowed URL schemes")

	return cmd
}

func reprCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repr <text>...",
		Short: "Print a quoted, debug-safe representation of each argument",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			for _, arg := range args {
				fmt.Fprintln(cmd.OutOrStdout(), escape.Repr(arg))
			}
		},
	}
}

// runLines applies fn to the joined args, or to each line of stdin when
// there are no args. Line terminators are kept.
func runLines(cmd *cobra.Command, args []string, fn func(string) (string, error)) error {
	w := cmd.OutOrStdout()
	if len(args) > 0 {
		out, err := fn(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(w, out)
		return nil
	}
	return mapLines(cmd.InOrStdin(), w, fn)
}

func mapLines(r io.Reader, w io.Writer, fn func(string) (string, error)) error {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	line := strbuf.New(256)
	for {
		line.Clear()
		ok, err := line.ReadLine(br)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		s, nl := strings.CutSuffix(line.String(), "\n")
		out, err := fn(s)
		if err != nil {
			return err
		}
		bw.WriteString(out)
		if nl {
			bw.WriteByte('\n')
		}
	}
}
