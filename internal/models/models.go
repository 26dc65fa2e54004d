package models

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date serialized as YYYY-MM-DD, the format the backend
// uses for expiry dates.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// naiveLayout is how the backend writes its UTC timestamps: no offset,
// microsecond precision.
const naiveLayout = "2006-01-02T15:04:05.999999"

// Timestamp is a point in time as the backend serializes it. Decoding accepts
// RFC 3339 and offset-less values, the latter read as UTC.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.UTC()}
}

// ParseTimestamp parses an RFC 3339 or offset-less timestamp
func ParseTimestamp(s string) (Timestamp, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Timestamp{t}, nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.UTC)
	if err != nil {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return Timestamp{t}, nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(naiveLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// User is the profile of the authenticated principal returned by /auth/me
type User struct {
	ID        int        `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	IsAdmin   bool       `json:"is_admin"`
	IsActive  bool       `json:"is_active"`
	CreatedAt Timestamp  `json:"created_at"`
	LastLogin *Timestamp `json:"last_login"`
}

// Token is the login response body
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Ingredient is a stored pantry item
type Ingredient struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	Quantity   float64   `json:"quantity"`
	Unit       string    `json:"unit"`
	ExpiryDate *Date     `json:"expiry_date"`
	Category   string    `json:"category,omitempty"`
	CreatedAt  Timestamp `json:"created_at"`
	UpdatedAt  Timestamp `json:"updated_at"`
}

// IngredientInput is used for both create and partial update. Nil fields are
// omitted so an update only touches what was set.
type IngredientInput struct {
	Name       *string  `json:"name,omitempty"`
	Location   *string  `json:"location,omitempty"`
	Quantity   *float64 `json:"quantity,omitempty"`
	Unit       *string  `json:"unit,omitempty"`
	ExpiryDate *Date    `json:"expiry_date,omitempty"`
	Category   *string  `json:"category,omitempty"`
}

// ShoppingItem is a line on a shopping list
type ShoppingItem struct {
	ID             int     `json:"id"`
	ShoppingListID int     `json:"shopping_list_id"`
	ItemName       string  `json:"item_name"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	IsPurchased    bool    `json:"is_purchased"`
}

// ShoppingItemInput represents the add-item request body
type ShoppingItemInput struct {
	ItemName    string  `json:"item_name"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	IsPurchased bool    `json:"is_purchased"`
}

// ShoppingList groups shopping items
type ShoppingList struct {
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	CreatedAt Timestamp      `json:"created_at"`
	Items     []ShoppingItem `json:"items"`
}

// ShoppingListInput represents the list creation request body
type ShoppingListInput struct {
	Name string `json:"name"`
}

// Recipe as returned by the backend. Ingredients is a JSON-encoded string.
type Recipe struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Ingredients  string    `json:"ingredients"`
	Instructions string    `json:"instructions"`
	PrepTime     *int      `json:"prep_time"`
	CookTime     *int      `json:"cook_time"`
	Servings     int       `json:"servings"`
	Calories     *int      `json:"calories"`
	Difficulty   string    `json:"difficulty,omitempty"`
	Tags         string    `json:"tags,omitempty"`
	IsHealthy    bool      `json:"is_healthy"`
	CreatedAt    Timestamp `json:"created_at"`
}

// RecipeInput represents the recipe creation request body
type RecipeInput struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Ingredients  string `json:"ingredients"`
	Instructions string `json:"instructions"`
	PrepTime     *int   `json:"prep_time,omitempty"`
	CookTime     *int   `json:"cook_time,omitempty"`
	Servings     int    `json:"servings"`
	Calories     *int   `json:"calories,omitempty"`
	Difficulty   string `json:"difficulty,omitempty"`
	Tags         string `json:"tags,omitempty"`
	IsHealthy    bool   `json:"is_healthy"`
}

// News is the admin view of a news post, including author and draft state
type News struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Summary     string     `json:"summary,omitempty"`
	Content     string     `json:"content"`
	ImageURL    string     `json:"image_url,omitempty"`
	IsPublished bool       `json:"is_published"`
	AuthorID    int        `json:"author_id"`
	PublishedAt *Timestamp `json:"published_at"`
	CreatedAt   Timestamp  `json:"created_at"`
	UpdatedAt   Timestamp  `json:"updated_at"`
}

// NewsPublic is the anonymous view of a published post
type NewsPublic struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Summary     string     `json:"summary"`
	Content     string     `json:"content"`
	ImageURL    string     `json:"image_url"`
	PublishedAt *Timestamp `json:"published_at"`
}

// NewsInput is used for both create and partial update
type NewsInput struct {
	Title       *string `json:"title,omitempty"`
	Summary     *string `json:"summary,omitempty"`
	Content     *string `json:"content,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsPublished *bool   `json:"is_published,omitempty"`
}

// Page is an editable static page (about, contact...)
type Page struct {
	ID        int       `json:"id"`
	PageKey   string    `json:"page_key"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt Timestamp `json:"updated_at"`
}

type PagePublic struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// PageInput is used for create (PageKey set) and update (PageKey ignored)
type PageInput struct {
	PageKey string  `json:"page_key,omitempty"`
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// AdminUser is a user record as seen from the admin panel
type AdminUser struct {
	ID        int        `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	IsActive  bool       `json:"is_active"`
	IsAdmin   bool       `json:"is_admin"`
	CreatedAt Timestamp  `json:"created_at"`
	LastLogin *Timestamp `json:"last_login"`
}

// AdminUserUpdate represents the PATCH body for a user
type AdminUserUpdate struct {
	IsActive *bool `json:"is_active,omitempty"`
	IsAdmin  *bool `json:"is_admin,omitempty"`
}

type UserStats struct {
	TotalUsers        int `json:"total_users"`
	ActiveUsers       int `json:"active_users"`
	AdminUsers        int `json:"admin_users"`
	NewUsersThisMonth int `json:"new_users_this_month"`
}
