package dto

type TopQuery struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

type ActivityEntry struct {
	Query     string `json:"query"`
	Timestamp string `json:"timestamp"`
	Username  string `json:"username"`
}

type DashboardMetrics struct {
	TotalUsers     int             `json:"totalUsers"`
	TotalQueries   int             `json:"totalQueries"`
	TotalPDFs      int             `json:"totalPDFs"`
	TopQueries     []TopQuery      `json:"topQueries"`
	RecentActivity []ActivityEntry `json:"recentActivity"`
}

type PDFDocument struct {
	Filename   string `json:"filename"`
	Pages      int    `json:"pages"`
	UploadedAt string `json:"uploadedAt"`
	Year       string `json:"year,omitempty"`
	Semester   string `json:"semester,omitempty"`
	Subject    string `json:"subject,omitempty"`
}

type UploadPDFRequest struct {
	Year     string `validate:"required"`
	Semester string `validate:"required"`
	Subject  string `validate:"required"`
}

// TimePoint is one bucket of the queries-over-time series.
type TimePoint struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type AdminUser struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Mobile    string `json:"mobile,omitempty"`
	Location  string `json:"location,omitempty"`
	Github    string `json:"github,omitempty"`
	Linkedin  string `json:"linkedin,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}
