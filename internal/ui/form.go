package ui

import (
	"wiivcinjector/internal/tr"
)

// Section of the translation template holding the main window captions.
const mainFormName = "MainForm"

var byteOrderChoices = []string{"Big Endian", "Little Endian"}

// formTree describes the translatable captions of the main window in their
// built-in English form.
func formTree() *tr.Node {
	return tr.NewContainer(mainFormName, "WiiVC Injector",
		tr.NewContainer("ImageCard", "Image",
			tr.NewText("BrowseBtn", "Browse..."),
			tr.NewText("OpenBtn", "Open"),
			tr.NewText("CloseBtn", "Close"),
			tr.NewText("ConfigBtn", "Settings"),
			tr.NewText("ExportBtn", "Export"),
		),
		tr.NewContainer("ReadCard", "Read",
			tr.NewText("OffsetLabel", "Offset"),
			tr.NewText("PeekCheck", "Peek (keep position)"),
			tr.NewText("ReadBtn", "Read String"),
			tr.NewText("CountLabel", "Count"),
			tr.NewChoices("OrderSelect", "Byte Order", append([]string(nil), byteOrderChoices...)...),
			tr.NewText("TableBtn", "Read Pointer Table"),
		),
		tr.NewContainer("StringsCard", "Strings",
			tr.NewText("ClearEntriesBtn", "Clear"),
		),
		tr.NewContainer("LogsPanel", "Logs",
			tr.NewText("CopyLogBtn", "Copy"),
			tr.NewText("ClearLogBtn", "Clear Logs"),
		),
		tr.NewText("TemplateBtn", "Load Template"),
		tr.NewText("NewTemplateBtn", "New Template"),
	)
}

// captionVisitor pushes node captions onto the widgets registered under
// the node names.
type captionVisitor struct {
	setters map[string]func(n *tr.Node)
}

func (v *captionVisitor) apply(n *tr.Node) {
	if set, ok := v.setters[n.Name]; ok {
		set(n)
	}
}

func (v *captionVisitor) VisitContainer(n *tr.Node) { v.apply(n) }
func (v *captionVisitor) VisitText(n *tr.Node)      { v.apply(n) }
func (v *captionVisitor) VisitChoices(n *tr.Node)   { v.apply(n) }

// translatedForm returns the window captions translated by t.
// A nil template leaves the English captions.
func translatedForm(t *tr.Template) *tr.Node {
	root := formTree()
	if t != nil {
		t.TranslateForm(root)
	}
	return root
}

// formCaption returns the translated caption of the named node, or name
// when the form has no such node.
func formCaption(t *tr.Template, name string) string {
	if n := translatedForm(t).Find(name); n != nil {
		return n.Text
	}
	return name
}
