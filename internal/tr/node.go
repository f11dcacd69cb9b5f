package tr

// Kind tags a Node.
type Kind int

const (
	Container Kind = iota
	TextItem
	ChoiceList
)

// Node is a translatable element of a window. Name is the template key,
// Text the displayed caption. ChoiceList nodes also carry selectable Items,
// which are translated as string resources rather than by key.
type Node struct {
	Kind     Kind
	Name     string
	Text     string
	Items    []string
	Children []*Node
}

func NewContainer(name, text string, children ...*Node) *Node {
	return &Node{Kind: Container, Name: name, Text: text, Children: children}
}

func NewText(name, text string) *Node {
	return &Node{Kind: TextItem, Name: name, Text: text}
}

func NewChoices(name, text string, items ...string) *Node {
	return &Node{Kind: ChoiceList, Name: name, Text: text, Items: items}
}

// Find returns the first node named name in depth-first order.
func (n *Node) Find(name string) *Node {
	if n == nil {
		return nil
	}
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if f := c.Find(name); f != nil {
			return f
		}
	}
	return nil
}

type Visitor interface {
	VisitContainer(n *Node)
	VisitText(n *Node)
	VisitChoices(n *Node)
}

// Walk visits n and then its children depth first.
func Walk(n *Node, v Visitor) {
	if n == nil {
		return
	}
	switch n.Kind {
	case Container:
		v.VisitContainer(n)
	case TextItem:
		v.VisitText(n)
	case ChoiceList:
		v.VisitChoices(n)
	}
	for _, c := range n.Children {
		Walk(c, v)
	}
}
