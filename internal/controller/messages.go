package controller

const (
	AppName = "WiiVCInjector"
	Version = "1.0.0"
)

// Log message formats. They are string resources: a translation template
// may replace any of them under its @Resource section.
const (
	msgOpening          = "Opening image %s"
	msgOpened           = "Opened %s: %s (%s, %s)"
	msgOpenFailed       = "Failed to open image: %v"
	msgInfoFailed       = "Failed to read image header: %v"
	msgAlternates       = "Regional variants: %s"
	msgClosed           = "Image closed"
	msgReading          = "Reading string at 0x%X"
	msgRead             = "Read %d bytes at 0x%X as %s: %s"
	msgReadFailed       = "Failed to read string at 0x%X: %v"
	msgReadingTable     = "Reading %d pointers at 0x%X"
	msgTableRead        = "Read %d strings from pointer table at 0x%X"
	msgTableFailed      = "Failed to read pointer table at 0x%X: %v"
	msgTemplateLoaded   = "Loaded translation %s (%s)"
	msgTemplateFailed   = "Failed to load translation: %v"
	msgTemplateCreated  = "Created translation template %s"
	msgNoImage          = "No image is open"
	msgAlreadyOpen      = "%s is already open"
	msgTemplateNoHeader = "Translation %s has no [%s] section"
)

// Resources are the default texts of all log messages and choice
// list items by id.
var Resources = map[string]string{
	"Opening":          msgOpening,
	"Opened":           msgOpened,
	"OpenFailed":       msgOpenFailed,
	"InfoFailed":       msgInfoFailed,
	"Alternates":       msgAlternates,
	"Closed":           msgClosed,
	"Reading":          msgReading,
	"Read":             msgRead,
	"ReadFailed":       msgReadFailed,
	"ReadingTable":     msgReadingTable,
	"TableRead":        msgTableRead,
	"TableFailed":      msgTableFailed,
	"TemplateLoaded":   msgTemplateLoaded,
	"TemplateFailed":   msgTemplateFailed,
	"TemplateCreated":  msgTemplateCreated,
	"NoImage":          msgNoImage,
	"AlreadyOpen":      msgAlreadyOpen,
	"TemplateNoHeader": msgTemplateNoHeader,
	"BigEndian":        "Big Endian",
	"LittleEndian":     "Little Endian",
}
