// Package export writes the session transcript to markdown or PDF.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nathoo/nocturne/engine"
	"github.com/nathoo/nocturne/types"
)

// Entry is one line of the transcript.
type Entry struct {
	Player bool
	Text   string
}

// Transcript is the printable record of a session.
type Transcript struct {
	Title     string
	Player    types.Player
	Inventory []types.Item
	Entries   []Entry
	Date      time.Time
}

// New builds a transcript from a snapshot and the conversation. The system
// message is dropped and mechanics notes are cut from player messages.
func New(title string, snap types.Snapshot, history []types.Message) Transcript {
	t := Transcript{
		Title:     title,
		Player:    snap.Player,
		Inventory: snap.Inventory,
		Date:      time.Now(),
	}
	for _, m := range history {
		switch m.Role {
		case types.RoleUser:
			text, _, _ := strings.Cut(m.Content, "\n\n"+engine.MechanicsTag)
			t.Entries = append(t.Entries, Entry{Player: true, Text: strings.TrimSpace(text)})
		case types.RoleAssistant:
			t.Entries = append(t.Entries, Entry{Text: strings.TrimSpace(m.Content)})
		}
	}
	return t
}

// DefaultFilename returns a file name for the transcript in the current
// directory.
func DefaultFilename(now time.Time) string {
	return "nocturne-" + now.Format("20060102-150405") + ".md"
}

// WriteFile writes the transcript, choosing the format by extension:
// ".pdf" renders a PDF, anything else markdown.
func WriteFile(path string, t Transcript) error {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return PDF(path, t)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create transcript: %w", err)
	}
	if err := Markdown(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Markdown writes the transcript as markdown.
func Markdown(w io.Writer, t Transcript) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", t.Title)
	fmt.Fprintf(&b, "%s\n\n", playerLine(t.Player))
	for _, e := range t.Entries {
		if e.Player {
			fmt.Fprintf(&b, "> %s\n\n", strings.ReplaceAll(e.Text, "\n", "\n> "))
		} else {
			fmt.Fprintf(&b, "%s\n\n", e.Text)
		}
	}
	b.WriteString("## Inventario\n\n")
	if len(t.Inventory) == 0 {
		b.WriteString("_Vacío._\n")
	}
	for _, it := range t.Inventory {
		fmt.Fprintf(&b, "- %s\n", ItemLine(it))
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// PDF renders the transcript to a PDF file.
func PDF(path string, t Transcript) error {
	pdf := renderPDF(t)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// WritePDF renders the transcript as PDF to w.
func WritePDF(w io.Writer, t Transcript) error {
	if err := renderPDF(t).Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func renderPDF(t Transcript) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(t.Title, true)
	pdf.SetAuthor("nocturne", true)
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()

	pdf.SetFont("Times", "B", 18)
	pdf.MultiCell(0, 9, tr(t.Title), "", "L", false)
	pdf.SetFont("Times", "I", 10)
	pdf.MultiCell(0, 5, tr(playerLine(t.Player)+" · "+t.Date.Format("02/01/2006")), "", "L", false)
	pdf.Ln(6)

	for _, e := range t.Entries {
		if e.Player {
			pdf.SetFont("Courier", "B", 10)
			pdf.SetTextColor(170, 30, 30)
			pdf.MultiCell(0, 5, tr("> "+e.Text), "", "L", false)
		} else {
			pdf.SetFont("Times", "", 11)
			pdf.SetTextColor(20, 20, 20)
			pdf.MultiCell(0, 5.5, tr(e.Text), "", "L", false)
		}
		pdf.Ln(3)
	}

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Times", "B", 13)
	pdf.MultiCell(0, 8, tr("Inventario"), "", "L", false)
	pdf.SetFont("Times", "", 11)
	for _, it := range t.Inventory {
		pdf.MultiCell(0, 5.5, tr("- "+ItemLine(it)), "", "L", false)
	}
	return pdf
}

func playerLine(p types.Player) string {
	return fmt.Sprintf("%s · Nivel %d · Vida %d/%d", p.Name, p.Level, p.Health, p.MaxHealth)
}

// ItemLine formats an item with its known attributes.
func ItemLine(it types.Item) string {
	var attrs []string
	for _, a := range []string{it.Type, it.Function, it.Dice, it.Material, it.Condition, it.Weight} {
		if a != "" {
			attrs = append(attrs, a)
		}
	}
	if len(attrs) == 0 {
		return it.Name
	}
	return it.Name + " (" + strings.Join(attrs, ", ") + ")"
}
