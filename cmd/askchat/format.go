package main

import (
	"fmt"
	"io"
	"strings"

	"askchat/internal/askclient"
	"askchat/internal/sanitize"
)

const dividerWidth = 60

// writeAnswer prints a settled answer the way the chat bubble reads.
func writeAnswer(w io.Writer, mode string, resp *askclient.Response, stripMarkup bool) {
	clean := sanitize.Text
	if stripMarkup {
		clean = sanitize.Markup
	}

	fmt.Fprintf(w, "Bot's Response (%s):\n", sanitize.Text(mode))
	fmt.Fprintln(w, clean(resp.Answer))

	if len(resp.Sources) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sources:")
	for i, src := range resp.Sources {
		line := fmt.Sprintf("Source %d: %s", i+1, clean(src.Title))
		if link := sanitize.Link(src.Link); link != "" {
			line += " (" + link + ")"
		}
		fmt.Fprintln(w, line)
	}
}

func writeError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", sanitize.Text(err.Error()))
}

func writeDivider(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("-", dividerWidth))
}
