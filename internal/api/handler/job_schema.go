package handler

import "time"

// --- Requests ---

type createJobRequest struct {
	Title       string    `json:"title" validate:"required,min=5,max=200"`
	Description string    `json:"description" validate:"required,min=20,max=5000"`
	Category    string    `json:"category" validate:"required,category"`
	Price       float64   `json:"price" validate:"required,gte=100"`
	Currency    string    `json:"currency" validate:"required"`
	Deadline    time.Time `json:"deadline" validate:"required,future"`
	Location    string    `json:"location" validate:"required,min=2,max=120"`
	Urgency     string    `json:"urgency" validate:"omitempty,oneof=low medium high"`
}

// updateJobRequest is a partial edit; absent fields are left unchanged.
type updateJobRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=5,max=200"`
	Description *string    `json:"description" validate:"omitempty,min=20,max=5000"`
	Category    *string    `json:"category" validate:"omitempty,category"`
	Price       *float64   `json:"price" validate:"omitempty,gte=100"`
	Currency    *string    `json:"currency" validate:"omitempty"`
	Deadline    *time.Time `json:"deadline" validate:"omitempty,future"`
	Location    *string    `json:"location" validate:"omitempty,min=2,max=120"`
	Urgency     *string    `json:"urgency" validate:"omitempty,oneof=low medium high"`
}

// jobListQuery is the filter panel's query string. Prices are pointers so an
// absent bound does not constrain the listing.
type jobListQuery struct {
	Category string
	Urgency  string   `validate:"omitempty,oneof=low medium high"`
	MinPrice *float64 `validate:"omitempty,gte=0"`
	MaxPrice *float64 `validate:"omitempty,gte=0"`
	Location string
	Search   string

	// IncludeBlocked is honoured for admins only.
	IncludeBlocked bool
}

type fileReportRequest struct {
	Reason      string `json:"reason" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// --- Responses ---

type jobLinks struct {
	Self string `json:"self"`
}

type jobResponse struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	CategoryLabel string   `json:"category_label"`
	Price         float64  `json:"price"`
	Currency      string   `json:"currency"`
	PriceDisplay  string   `json:"price_display"`
	Deadline      string   `json:"deadline"`
	Location      string   `json:"location"`
	Urgency       string   `json:"urgency"`
	UrgencyLabel  string   `json:"urgency_label"`
	Status        string   `json:"status"`
	StatusLabel   string   `json:"status_label"`
	ClientID      string   `json:"client_id"`
	ClientName    string   `json:"client_name"`
	IsBlocked     bool     `json:"is_blocked"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
	Links         jobLinks `json:"_links"`
}

type jobListResponse struct {
	Items []jobResponse `json:"items"`
	Total int           `json:"total"`
}

type earningsMonthResponse struct {
	Month        string  `json:"month"`
	Total        float64 `json:"total"`
	TotalDisplay string  `json:"total_display"`
}

type earningsResponse struct {
	Completed      int                     `json:"completed"`
	Total          float64                 `json:"total"`
	TotalDisplay   string                  `json:"total_display"`
	Average        float64                 `json:"average"`
	AverageDisplay string                  `json:"average_display"`
	Monthly        []earningsMonthResponse `json:"monthly"`
	Recent         []jobResponse           `json:"recent"`
}

type categoryResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type reportResponse struct {
	ID           string  `json:"id"`
	JobID        string  `json:"job_id"`
	ReporterID   string  `json:"reporter_id"`
	ReporterName string  `json:"reporter_name"`
	Reason       string  `json:"reason"`
	Description  string  `json:"description,omitempty"`
	Status       string  `json:"status"`
	StatusLabel  string  `json:"status_label"`
	CreatedAt    string  `json:"created_at"`
	ReviewedAt   *string `json:"reviewed_at,omitempty"`
	ReviewedBy   string  `json:"reviewed_by,omitempty"`
}
