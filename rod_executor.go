package doceditor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// surfaceScript exposes window.docSurface on the editor page. Offsets follow
// the same unit model as the in-memory surface: one per code point of text,
// one per br, img, input or hr, nothing for script, style or template.
const surfaceScript = `
window.docSurface = (function () {
  const ATOMIC = new Set(["BR", "IMG", "INPUT", "HR"]);
  const OPAQUE = new Set(["SCRIPT", "STYLE", "TEMPLATE"]);
  const root = () => document.getElementById("editor-root");

  function units(node, out) {
    for (let c = node.firstChild; c; c = c.nextSibling) {
      if (c.nodeType === Node.TEXT_NODE) {
        let off = 0;
        for (const ch of c.data) {
          out.push({ node: c, start: off, end: off + ch.length, ch: ch });
          off += ch.length;
        }
      } else if (c.nodeType === Node.ELEMENT_NODE) {
        if (ATOMIC.has(c.tagName)) {
          out.push({ node: c, atomic: true, ch: c.tagName === "BR" ? "\n" : "\uFFFC" });
        } else if (!OPAQUE.has(c.tagName)) {
          units(c, out);
        }
      }
    }
    return out;
  }

  function indexOf(n) {
    return Array.prototype.indexOf.call(n.parentNode.childNodes, n);
  }
  function before(u) {
    return u.atomic ? [u.node.parentNode, indexOf(u.node)] : [u.node, u.start];
  }
  function after(u) {
    return u.atomic ? [u.node.parentNode, indexOf(u.node) + 1] : [u.node, u.end];
  }
  function point(offset) {
    const r = root(), us = units(r, []);
    if (us.length === 0) return [r, r.childNodes.length];
    return offset > 0 ? after(us[offset - 1]) : before(us[0]);
  }
  function caret() {
    const r = root(), sel = window.getSelection();
    if (!sel.rangeCount) return 0;
    const current = sel.getRangeAt(0);
    if (!r.contains(current.startContainer)) return 0;
    const start = document.createRange();
    start.setStart(current.startContainer, current.startOffset);
    start.collapse(true);
    let n = 0;
    for (const u of units(r, [])) {
      const p = after(u);
      if (start.comparePoint(p[0], p[1]) > 0) break;
      n++;
    }
    return n;
  }

  return {
    mount(content) {
      root().innerHTML = content;
      this.select(0, 0);
    },
    content() {
      return root().innerHTML;
    },
    length() {
      return units(root(), []).length;
    },
    select(start, end) {
      const total = units(root(), []).length;
      if (start < 0 || end < start || end > total) return false;
      const s = point(start), e = point(end);
      const range = document.createRange();
      range.setStart(s[0], s[1]);
      range.setEnd(e[0], e[1]);
      const sel = window.getSelection();
      sel.removeAllRanges();
      sel.addRange(range);
      return true;
    },
    charBeforeCaret() {
      const n = caret();
      return n === 0 ? "" : units(root(), [])[n - 1].ch;
    },
    exec(command, value) {
      root().focus();
      return document.execCommand(command, false, value || null);
    },
    insertHTML(fragment) {
      const n = caret();
      const p = point(n);
      const range = document.createRange();
      range.setStart(p[0], p[1]);
      range.collapse(true);
      const nodes = range.createContextualFragment(fragment);
      const count = units(nodes, []).length;
      range.insertNode(nodes);
      this.select(n + count, n + count);
    },
    focus() {
      root().focus();
    },
  };
})();
`

// editorShell is the page hosting the contenteditable root.
const editorShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>%s</style>
</head>
<body>
<div id="editor-root" contenteditable="true"></div>
<script>%s</script>
</body>
</html>`

// RodExecutor drives a contenteditable surface in headless Chrome.
// The browser is launched on first use and shared by all calls.
type RodExecutor struct {
	mu      sync.Mutex
	handle  *browserHandle
	page    *rod.Page
	css     string
	timeout time.Duration
}

// NewRodExecutor creates a RodExecutor whose editor page is styled with css.
// A zero timeout leaves browser calls bounded only by their context.
func NewRodExecutor(css string, timeout time.Duration) *RodExecutor {
	return &RodExecutor{css: css, timeout: timeout}
}

// ensurePage lazily launches the browser and opens the editor page.
func (e *RodExecutor) ensurePage(ctx context.Context) error {
	if e.page != nil {
		return nil
	}
	if e.handle == nil {
		h, err := launchBrowser()
		if err != nil {
			return err
		}
		e.handle = h
	}

	page, err := e.handle.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	shell := fmt.Sprintf(editorShell, "Document editor", e.css, surfaceScript)
	if err := e.bound(ctx, page).SetDocumentContent(shell); err != nil {
		_ = page.Close()
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	e.page = page
	return nil
}

// bound attaches ctx and the configured timeout to page calls.
func (e *RodExecutor) bound(ctx context.Context, page *rod.Page) *rod.Page {
	p := page.Context(ctx)
	if e.timeout > 0 {
		p = p.Timeout(e.timeout)
	}
	return p
}

// eval runs a docSurface method on the editor page.
func (e *RodExecutor) eval(ctx context.Context, js string, args ...interface{}) (*proto.RuntimeRemoteObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.page == nil {
		return nil, fmt.Errorf("%w: surface not mounted", ErrSurface)
	}
	res, err := e.bound(ctx, e.page).Eval(js, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSurface, err)
	}
	return res, nil
}

// Mount implements RichTextCommandExecutor.
func (e *RodExecutor) Mount(ctx context.Context, content string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.ensurePage(ctx); err != nil {
		return err
	}
	_, err := e.eval(ctx, `(content) => window.docSurface.mount(content)`, content)
	return err
}

// Content implements RichTextCommandExecutor.
func (e *RodExecutor) Content(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.eval(ctx, `() => window.docSurface.content()`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// Exec implements RichTextCommandExecutor.
func (e *RodExecutor) Exec(ctx context.Context, command, value string) error {
	if err := Command(command).Validate(value); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.eval(ctx, `(command, value) => window.docSurface.exec(command, value)`, command, value)
	if err != nil {
		return err
	}
	if !res.Value.Bool() {
		return fmt.Errorf("%w: browser rejected %q", ErrSurface, command)
	}
	return nil
}

// Select implements RichTextCommandExecutor.
func (e *RodExecutor) Select(ctx context.Context, start, end int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.eval(ctx, `(start, end) => window.docSurface.select(start, end)`, start, end)
	if err != nil {
		return err
	}
	if !res.Value.Bool() {
		return fmt.Errorf("%w: selection [%d, %d) out of range", ErrSurface, start, end)
	}
	return nil
}

// CharBeforeCaret implements RichTextCommandExecutor.
func (e *RodExecutor) CharBeforeCaret(ctx context.Context) (rune, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.eval(ctx, `() => window.docSurface.charBeforeCaret()`)
	if err != nil {
		return 0, false, err
	}
	for _, r := range res.Value.Str() {
		return r, true, nil
	}
	return 0, false, nil
}

// InsertHTML implements RichTextCommandExecutor.
func (e *RodExecutor) InsertHTML(ctx context.Context, fragment string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.eval(ctx, `(fragment) => window.docSurface.insertHTML(fragment)`, fragment)
	return err
}

// Focus implements RichTextCommandExecutor.
func (e *RodExecutor) Focus(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.eval(ctx, `() => window.docSurface.focus()`)
	return err
}

// Close releases the page and the browser.
func (e *RodExecutor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.page != nil {
		_ = e.page.Close()
		e.page = nil
	}
	if e.handle != nil {
		err := e.handle.Close()
		e.handle = nil
		return err
	}
	return nil
}
