package internal

type ReceiptSource string

const (
	SourceCSV            ReceiptSource = "csv"
	SourceXLSX           ReceiptSource = "xlsx"
	SourcePDF            ReceiptSource = "pdf"
	SourceEmailText      ReceiptSource = "email_text"
	SourceEmailHTMLTable ReceiptSource = "email_html_table"
)

type DuplicateStatus string

type DuplicateReason string

const (
	DuplicateFound  DuplicateStatus = "DUPLICATE"
	DuplicateReview DuplicateStatus = "REVIEW"
	DuplicateNone   DuplicateStatus = "NEW"

	ReasonBarcode DuplicateReason = "BARCODE"
	ReasonName    DuplicateReason = "NAME"
	ReasonFuzzy   DuplicateReason = "FUZZY"
	ReasonNone    DuplicateReason = "NONE"
)

type ProductRecord struct {
	ID           int
	RemoteUID    *string
	Name         string
	Brand        *string
	Category     *string
	Barcode      *string
	SKU          *string
	MRP          *float64
	SellingPrice *float64
	Unit         *string
	ImageURL     *string
	UpdatedAt    *string
	RawJSON      string
}

type DuplicateCandidate struct {
	ID        int     `json:"id"`
	RemoteUID *string `json:"remoteUid"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
}

type DuplicateProduct struct {
	ID        *int     `json:"id"`
	RemoteUID *string  `json:"remoteUid"`
	Name      *string  `json:"name"`
	Brand     *string  `json:"brand"`
	Barcode   *string  `json:"barcode"`
	MRP       *float64 `json:"mrp"`
}

type DuplicateResult struct {
	Status     DuplicateStatus      `json:"status"`
	Confidence float64              `json:"confidence"`
	Reason     DuplicateReason      `json:"reason"`
	Product    *DuplicateProduct    `json:"product"`
	Candidates []DuplicateCandidate `json:"candidates"`
}

// ReceiptRow is one ingested receipt document: a file dropped into the inbox
// directory or an email forwarded by marketplace staff.
type ReceiptRow struct {
	ID         int
	Provider   string
	SourceRef  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

type LineExportRow struct {
	LineNo           int
	Source           string
	RawLine          string
	ItemName         *string
	Qty              *float64
	NetAmount        *float64
	MRP              *float64
	GrossAmount      *float64
	UnitPrice        *float64
	PriceError       *string
	DupStatus        string
	DupConfidence    float64
	DupReason        string
	ProductID        *int
	ProductRemoteUID *string
	ProductName      *string
	ProductBarcode   *string
	Candidate2Name   *string
	Candidate2Score  *float64
}
