package types

type NavbarData struct {
	IsAuthenticated bool
	UserID          string
	UserEmail       string
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

type BasePageData struct {
	Title  string
	Navbar NavbarData
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

type HomePageData struct {
	BasePageData
	Notice string
	Error  string
}

type LoginPageData struct {
	BasePageData
	Email string
	Error string
}

type RegisterPageData struct {
	BasePageData
	Email       string
	Error       string
	FieldErrors map[string]string
}

type UploadPageData struct {
	BasePageData
	Error string
}

type ProcessingPageData struct {
	BasePageData
	RunID string
}

type HistoryPageData struct {
	BasePageData
	Documents  []*Document
	SampleData bool
	Notice     string
}

type DocumentPageData struct {
	BasePageData
	Document   *Document
	Analysis   *DocumentAnalysis
	Chat       []*ChatMessage
	Error      string
	SampleView bool
}
