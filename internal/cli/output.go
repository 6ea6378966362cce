package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// printer печатает результат команды либо таблицей, либо JSON.
type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	if w == nil {
		w = io.Discard
	}

	return &printer{w: w, json: asJSON}
}

// table печатает заголовок и строки, выровненные по колонкам.
// В режиме JSON печатается v.
func (p *printer) table(v any, header []string, rows [][]string) error {
	if p.json {
		return p.value(v)
	}

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}

	return tw.Flush()
}

// fields печатает пары «ключ: значение» для одиночного объекта.
func (p *printer) fields(v any, kv [][2]string) error {
	if p.json {
		return p.value(v)
	}

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	for _, f := range kv {
		fmt.Fprintf(tw, "%s:\t%s\n", f[0], f[1])
	}

	return tw.Flush()
}

// message печатает короткое сообщение; в режиме JSON — {"message": ...}.
func (p *printer) message(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if p.json {
		return p.value(map[string]string{"message": msg})
	}

	_, err := fmt.Fprintln(p.w, msg)

	return err
}

func (p *printer) value(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}

	return *s
}
