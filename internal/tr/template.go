// Package tr loads and writes UI translation templates.
//
// A template is an INI file with one section per window, keyed by element
// name, plus an "@Resource" section translating the application's string
// resources by id. The application section written by Create records the
// language name, version and author of the translation.
package tr

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/ini.v1"
)

const (
	SectionResource = "@Resource"
	KeyFormTitle    = "@Title"
	KeyLanguage     = "language"
	KeyVersion      = "verion" // spelling used by published templates
	KeyAuthor       = "author"
)

var loadOptions = ini.LoadOptions{
	Loose:               true,
	IgnoreInlineComment: true,
	IgnoreContinuation:  true,
}

type Template struct {
	path string
	file *ini.File

	mu        sync.RWMutex
	resources map[string]string // id -> default text
	byText    map[string]string // normalised default text -> id
	cache     *Cache            // nil when caching is disabled
}

// Header is the application section of a template.
type Header struct {
	Language string
	Version  string
	Author   string
}

func newTemplate(path string, enableCache bool) (*Template, error) {
	f, err := ini.LoadSources(loadOptions, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load template %s: %w", path, err)
	}
	t := &Template{
		path:      path,
		file:      f,
		resources: map[string]string{},
		byText:    map[string]string{},
	}
	if enableCache {
		t.cache = NewCache()
	}
	return t, nil
}

// Load opens the template at path. A missing file yields an empty,
// invalid template rather than an error.
func Load(path string, enableCache bool) (*Template, error) {
	return newTemplate(path, enableCache)
}

// Create writes a new template header for appName and saves it.
func Create(path, appName, language, version, author string) (*Template, error) {
	t, err := newTemplate(path, false)
	if err != nil {
		return nil, err
	}
	t.write(appName, KeyLanguage, language)
	t.write(appName, KeyVersion, version)
	t.write(appName, KeyAuthor, author)
	if err := t.Save(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Template) FileName() string {
	if t == nil {
		return ""
	}
	return t.path
}

// Valid reports whether the template is backed by an existing file.
func (t *Template) Valid() bool {
	if t == nil || strings.TrimSpace(t.path) == "" {
		return false
	}
	_, err := os.Stat(t.path)
	return err == nil
}

func (t *Template) Header(appName string) Header {
	return Header{
		Language: t.read(appName, KeyLanguage),
		Version:  t.read(appName, KeyVersion),
		Author:   t.read(appName, KeyAuthor),
	}
}

// Sections lists the named sections of the template.
func (t *Template) Sections() []string {
	var ret []string
	for _, s := range t.file.SectionStrings() {
		if s == ini.DefaultSection {
			continue
		}
		ret = append(ret, s)
	}
	return ret
}

func (t *Template) Save() error {
	if err := t.file.SaveTo(t.path); err != nil {
		return fmt.Errorf("failed to save template %s: %w", t.path, err)
	}
	return nil
}

// Reload re-reads the file and drops cached translations.
func (t *Template) Reload() error {
	if err := t.file.Reload(); err != nil {
		return fmt.Errorf("failed to reload template %s: %w", t.path, err)
	}
	t.resetCache()
	return nil
}

// SetResources installs the application's default string resources.
func (t *Template) SetResources(res map[string]string) {
	ids := make([]string, 0, len(res))
	for id := range res {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	resources := make(map[string]string, len(res))
	byText := make(map[string]string, len(res))
	for _, id := range ids {
		resources[id] = res[id]
		norm := strings.ReplaceAll(res[id], "\r\n", "\n")
		if _, dup := byText[norm]; !dup {
			byText[norm] = id
		}
	}

	t.mu.Lock()
	t.resources = resources
	t.byText = byText
	t.mu.Unlock()
	t.resetCache()
}

// AppendResources writes the default string resources into the template.
func (t *Template) AppendResources(res map[string]string) error {
	for id, text := range res {
		t.write(SectionResource, id, text)
	}
	return t.Save()
}

// AppendForm records the captions of root and all its descendants
// under a section named after root.
func (t *Template) AppendForm(root *Node) error {
	if root == nil {
		return nil
	}
	t.write(root.Name, KeyFormTitle, root.Text)
	v := &appendVisitor{t: t, section: root.Name}
	for _, c := range root.Children {
		Walk(c, v)
	}
	return t.Save()
}

// TranslateForm replaces captions in the tree with their translations.
// Elements without a translation keep their text.
func (t *Template) TranslateForm(root *Node) {
	if root == nil {
		return
	}
	if s := t.read(root.Name, KeyFormTitle); s != "" {
		root.Text = s
	}
	v := &translateVisitor{t: t, section: root.Name}
	for _, c := range root.Children {
		Walk(c, v)
	}
}

// Tr translates a string resource by its default text.
// Strings that match no resource are returned unchanged.
func (t *Template) Tr(s string) string {
	if s == "" || !t.Valid() {
		return s
	}
	if t.cache != nil {
		if v, ok := t.cache.Get(s); ok {
			return v
		}
	}

	t.mu.RLock()
	id, ok := t.byText[s]
	t.mu.RUnlock()
	ret := s
	if ok {
		ret = t.trID(id)
	}

	if t.cache != nil {
		t.cache.Put(s, ret)
	}
	return ret
}

func (t *Template) trID(id string) string {
	if s := t.read(SectionResource, id); s != "" {
		return s
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.resources[id]
}

func (t *Template) resetCache() {
	if t.cache != nil {
		t.cache.Reset()
	}
}

func (t *Template) write(section, key, value string) {
	value = strings.ReplaceAll(value, "\r", `\r`)
	value = strings.ReplaceAll(value, "\n", `\n`)
	t.file.Section(section).Key(key).SetValue(value)
	t.resetCache()
}

func (t *Template) read(section, key string) string {
	sec, err := t.file.GetSection(section)
	if err != nil || !sec.HasKey(key) {
		return ""
	}
	value := sec.Key(key).String()
	value = strings.ReplaceAll(value, `\r`, "\r")
	return strings.ReplaceAll(value, `\n`, "\n")
}

type appendVisitor struct {
	t       *Template
	section string
}

func (v *appendVisitor) add(n *Node) {
	if n.Name != "" && n.Text != "" {
		v.t.write(v.section, n.Name, n.Text)
	}
}

func (v *appendVisitor) VisitContainer(n *Node) { v.add(n) }
func (v *appendVisitor) VisitText(n *Node)      { v.add(n) }
func (v *appendVisitor) VisitChoices(n *Node)   { v.add(n) }

type translateVisitor struct {
	t       *Template
	section string
}

func (v *translateVisitor) caption(n *Node) {
	if s := v.t.read(v.section, n.Name); s != "" {
		n.Text = s
	}
}

func (v *translateVisitor) VisitContainer(n *Node) { v.caption(n) }
func (v *translateVisitor) VisitText(n *Node)      { v.caption(n) }

func (v *translateVisitor) VisitChoices(n *Node) {
	v.caption(n)
	for i, item := range n.Items {
		n.Items[i] = v.t.Tr(item)
	}
}
