package domain

// Reserved member keys. They are answered by the node itself and can never
// name a child, method or data member.
const (
	KeyLocator = "el"
	KeyName    = "name"
	KeyParent  = "@parent"

	// ReservedPrefix marks keys owned by arbor.
	ReservedPrefix = "@"
)

// Standard verb names. Engines are free to support a subset or more.
const (
	VerbShould         = "should"
	VerbClick          = "click"
	VerbDblClick       = "dblclick"
	VerbRightClick     = "rightclick"
	VerbType           = "type"
	VerbClear          = "clear"
	VerbCheck          = "check"
	VerbUncheck        = "uncheck"
	VerbSelect         = "select"
	VerbSubmit         = "submit"
	VerbFocus          = "focus"
	VerbBlur           = "blur"
	VerbScrollIntoView = "scrollIntoView"
	VerbScrollTo       = "scrollTo"
	VerbContains       = "contains"
	VerbFind           = "find"
	VerbParent         = "parent"
	VerbFirst          = "first"
	VerbLast           = "last"
	VerbEq             = "eq"
	VerbInvoke         = "invoke"
	VerbVisit          = "visit"
	VerbTitle          = "title"
	VerbURL            = "url"
	VerbHash           = "hash"
)
