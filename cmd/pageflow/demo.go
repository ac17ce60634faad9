package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/pageflow/internal/document"
	"github.com/dshills/pageflow/internal/logging"
	"github.com/dshills/pageflow/internal/offload"
	"github.com/dshills/pageflow/internal/page"
	"github.com/dshills/pageflow/internal/paginate"
)

// demo renders the engine's visible pages and feeds keyboard edits into
// the active page. All engine mutation happens on the event loop goroutine;
// the scheduler is drained after every event, standing in for the "after
// layout settles" hop a real host gets from its renderer.
type demo struct {
	screen tcell.Screen
	eng    *paginate.Orchestrator
	sched  *paginate.QueueScheduler
	svc    *offload.Service
	log    *logging.Logger
}

func newDemo(screen tcell.Screen, eng *paginate.Orchestrator, sched *paginate.QueueScheduler, svc *offload.Service, log *logging.Logger) *demo {
	return &demo{
		screen: screen,
		eng:    eng,
		sched:  sched,
		svc:    svc,
		log:    log.WithComponent("demo"),
	}
}

// seed puts a starter paragraph on the first page.
func (d *demo) seed() {
	_ = d.eng.Execute(func(s page.Surface) error {
		doc := document.New(document.NewParagraph("Type to fill the page. It splits when it overflows."))
		s.SetDocument(doc)
		s.SetSelection(doc.Size() - 1)
		return nil
	})
	d.sched.Drain()
}

func (d *demo) run() {
	for {
		d.draw()
		switch ev := d.screen.PollEvent().(type) {
		case *tcell.EventResize:
			d.screen.Sync()
		case *tcell.EventKey:
			if d.handleKey(ev) {
				return
			}
		}
		d.sched.Drain()
	}
}

// handleKey applies one key event. Returns true on quit.
func (d *demo) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true

	case tcell.KeyCtrlN:
		if err := d.eng.AddPage(); err != nil {
			d.log.Warn("add page: %v", err)
		}

	case tcell.KeyCtrlD:
		if err := d.eng.DeletePage(d.eng.Pool().Active()); err != nil {
			d.log.Warn("delete page: %v", err)
		}

	case tcell.KeyCtrlR:
		d.eng.ResetPaginationCounts()

	case tcell.KeyLeft:
		_ = d.eng.SetCurrentPage(d.eng.Pool().Active() - 1)

	case tcell.KeyRight:
		_ = d.eng.SetCurrentPage(d.eng.Pool().Active() + 1)

	case tcell.KeyEnter:
		d.edit(func(doc *document.Document) {
			doc.Nodes = append(doc.Nodes, document.NewParagraph(""))
		})

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		d.edit(func(doc *document.Document) {
			last := len(doc.Nodes) - 1
			if last < 0 {
				return
			}
			if text := doc.Nodes[last].Text; text != "" {
				_, size := utf8.DecodeLastRuneInString(text)
				doc.Nodes[last].Text = text[:len(text)-size]
			} else if last > 0 {
				doc.Nodes = doc.Nodes[:last]
			}
		})

	case tcell.KeyRune:
		r := ev.Rune()
		d.edit(func(doc *document.Document) {
			last := len(doc.Nodes) - 1
			doc.Nodes[last].Text += string(r)
		})
	}
	return false
}

// edit mutates a copy of the active page's document and writes it back,
// parking the cursor at the end. The write fires the engine's normal
// content-change path.
func (d *demo) edit(mutate func(*document.Document)) {
	err := d.eng.Execute(func(s page.Surface) error {
		doc := s.GetDocument().Clone()
		mutate(&doc)
		s.SetDocument(doc)
		s.SetSelection(doc.Size() - 1)
		return nil
	})
	if err != nil {
		d.log.Warn("edit: %v", err)
	}
}

func (d *demo) draw() {
	d.screen.Clear()
	width, height := d.screen.Size()

	pages := d.eng.Pool().VisiblePages(0)
	if len(pages) > 0 {
		colWidth := width / len(pages)
		for i, desc := range pages {
			d.drawPage(i, desc, i*colWidth, colWidth, height-2)
		}
	}

	d.drawStatus(width, height)
	d.screen.Show()
}

func (d *demo) drawPage(i int, desc *page.Descriptor, x, w, h int) {
	active := d.eng.Pool().Active() == i
	style := tcell.StyleDefault
	titleStyle := style.Bold(active)
	if desc.HasOverflow {
		titleStyle = titleStyle.Foreground(tcell.ColorRed)
	}

	marker := " "
	if active {
		marker = "*"
	}
	title := fmt.Sprintf("%s Page %d  %dpx", marker, i+1, desc.ContentHeightPx)
	d.drawText(x, 0, w, titleStyle, title)

	doc := desc.Surface.GetDocument()
	y := 2
	for _, node := range doc.Nodes {
		if y >= h {
			break
		}
		text := node.Text
		if text == "" {
			text = "¶"
		}
		// Wrap each paragraph into the column.
		for len(text) > 0 && y < h {
			line := text
			if utf8.RuneCountInString(line) > w-2 {
				runes := []rune(line)
				line = string(runes[:w-2])
				text = string(runes[w-2:])
			} else {
				text = ""
			}
			d.drawText(x+1, y, w-2, style, line)
			y++
		}
		y++ // blank line between paragraphs
	}
}

func (d *demo) drawStatus(width, height int) {
	st := d.eng.Stats()
	off := d.svc.Stats()

	mode := "inline"
	if off.Ready {
		mode = "worker"
	}
	status := fmt.Sprintf(
		"pages %d/%d  splits %d  merges %d  halts %d | offload %s: %d run, %d resolved, %d fell back",
		st.VisiblePages, st.PoolSize, st.Paginations, st.Merges, st.Halts,
		mode, off.Submitted, off.Resolved, off.FellBack,
	)
	help := "type  enter  bksp  ←→ page  ^N add  ^D del  ^R reset  esc quit"

	barStyle := tcell.StyleDefault.Reverse(true)
	d.drawText(0, height-2, width, barStyle, pad(status, width))
	d.drawText(0, height-1, width, tcell.StyleDefault.Dim(true), help)
}

func (d *demo) drawText(x, y, max int, style tcell.Style, text string) {
	col := x
	for _, r := range text {
		if col >= x+max {
			break
		}
		d.screen.SetContent(col, y, r, nil, style)
		col++
	}
}

func pad(s string, width int) string {
	for utf8.RuneCountInString(s) < width {
		s += " "
	}
	return s
}
