package command

import (
	"github.com/gdamore/tcell/v2"
	"github.com/pixil98/go-rotmg/internal/asset"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"
)

func newBrowseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the registry interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return newBrowser(m, opts.width).Run()
		},
	}
}

// browser is a three pane view: categories, the keys of the selected
// category, and the selected record.
type browser struct {
	app        *tview.Application
	categories *tview.List
	records    *tview.List
	detail     *tview.TextView

	assets *asset.Manager
	width  int
	// keys of the records pane, in list order
	keys []string
	// category shown in the records pane
	category string
}

func newBrowser(m *asset.Manager, width int) *browser {
	b := &browser{
		app:        tview.NewApplication(),
		categories: tview.NewList().ShowSecondaryText(false),
		records:    tview.NewList().ShowSecondaryText(false),
		detail:     tview.NewTextView().SetWrap(true).SetWordWrap(true),
		assets:     m,
		width:      width,
	}

	b.categories.SetBorder(true).SetTitle(" categories ")
	b.records.SetBorder(true).SetTitle(" records ")
	b.detail.SetBorder(true).SetTitle(" detail ")

	for _, c := range m.Categories() {
		b.categories.AddItem(c, "", 0, nil)
	}
	b.categories.SetChangedFunc(func(_ int, main, _ string, _ rune) {
		b.showCategory(main)
	})
	b.categories.SetSelectedFunc(func(int, string, string, rune) {
		b.app.SetFocus(b.records)
	})

	b.records.SetChangedFunc(func(i int, _, _ string, _ rune) {
		b.showRecord(i)
	})
	b.records.SetDoneFunc(func() {
		b.app.SetFocus(b.categories)
	})

	if b.categories.GetItemCount() > 0 {
		main, _ := b.categories.GetItemText(0)
		b.showCategory(main)
	}

	layout := tview.NewFlex().
		AddItem(b.categories, 20, 0, true).
		AddItem(b.records, 40, 0, false).
		AddItem(b.detail, 0, 1, false)

	b.app.SetRoot(layout, true).SetInputCapture(b.handleKey)

	return b
}

func (b *browser) Run() error {
	return b.app.Run()
}

func (b *browser) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	switch {
	case ev.Key() == tcell.KeyTab:
		if b.categories.HasFocus() {
			b.app.SetFocus(b.records)
		} else {
			b.app.SetFocus(b.categories)
		}
		return nil
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
		b.app.Stop()
		return nil
	}
	return ev
}

func (b *browser) showCategory(category string) {
	b.category = category
	b.keys = b.keys[:0]
	b.records.Clear()

	for key := range b.assets.Entries(category) {
		b.keys = append(b.keys, key)
		b.records.AddItem(key, "", 0, nil)
	}
	b.showRecord(0)
}

func (b *browser) showRecord(i int) {
	if i < 0 || i >= len(b.keys) {
		b.detail.SetText("")
		return
	}

	v, ok := b.assets.Get(b.category, b.keys[i])
	if !ok {
		b.detail.SetText("")
		return
	}

	text, err := describeRecord(v, b.width)
	if err != nil {
		text = err.Error()
	}
	b.detail.SetText(text).ScrollToBeginning()
}
