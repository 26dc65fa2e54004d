// Package testutil provides an in-memory pantry backend for tests. It speaks
// the same REST contract as the real service closely enough to drive the
// client, auth actions and CLI end to end.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/pantryhub/pantry/internal/models"
)

var signingKey = []byte("pantry-test-secret")

// RecordedRequest is what the backend saw for one call
type RecordedRequest struct {
	Method      string
	Path        string
	Query       string
	ContentType string
	Header      http.Header
	Form        map[string]string
}

type account struct {
	user     models.User
	password string
}

// Backend is a fake pantry API server
type Backend struct {
	Server *httptest.Server

	mu           sync.Mutex
	accounts     map[string]*account
	revoked      map[string]bool
	ingredients  map[int]models.Ingredient
	lists        map[int]*models.ShoppingList
	recipes      map[int]models.Recipe
	news         []models.News
	pages        map[string]models.Page
	nextID       int
	requests     []RecordedRequest
	meStatus     int
	loginDelay   time.Duration
	tokenCounter int
}

// NewBackend starts a fake backend that is shut down when the test ends
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &Backend{
		accounts:    make(map[string]*account),
		revoked:     make(map[string]bool),
		ingredients: make(map[int]models.Ingredient),
		lists:       make(map[int]*models.ShoppingList),
		recipes:     make(map[int]models.Recipe),
		pages:       make(map[string]models.Page),
		nextID:      1,
	}
	b.Server = httptest.NewServer(b.router())
	t.Cleanup(b.Server.Close)

	return b
}

func (b *Backend) URL() string {
	return b.Server.URL
}

// AddUser registers an account directly
func (b *Backend) AddUser(email, username, password string, admin bool) models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(email, username, password, admin)
}

func (b *Backend) addUserLocked(email, username, password string, admin bool) models.User {
	u := models.User{
		ID:        b.nextID,
		Email:     email,
		Username:  username,
		IsAdmin:   admin,
		IsActive:  true,
		CreatedAt: models.NewTimestamp(time.Now().Truncate(time.Second)),
	}
	b.nextID++
	b.accounts[email] = &account{user: u, password: password}
	return u
}

// IssueToken signs a token for an existing account without going through /auth/login
func (b *Backend) IssueToken(t *testing.T, email string) string {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	token, err := b.signLocked(email)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

// Revoke makes the backend reject token with 401 from now on
func (b *Backend) Revoke(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[token] = true
}

// FailProfile makes /auth/me answer with status until reset with 0
func (b *Backend) FailProfile(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.meStatus = status
}

// SlowLogin delays every login response
func (b *Backend) SlowLogin(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loginDelay = d
}

func (b *Backend) AddIngredient(in models.Ingredient) models.Ingredient {
	b.mu.Lock()
	defer b.mu.Unlock()

	in.ID = b.nextID
	b.nextID++
	b.ingredients[in.ID] = in
	return in
}

func (b *Backend) AddNews(n models.News) models.News {
	b.mu.Lock()
	defer b.mu.Unlock()

	n.ID = b.nextID
	b.nextID++
	b.news = append(b.news, n)
	return n
}

func (b *Backend) AddPage(p models.Page) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pages[p.PageKey] = p
}

// Requests returns a copy of every request received so far
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedRequest(nil), b.requests...)
}

// LastRequest returns the most recent request matching path, if any
func (b *Backend) LastRequest(path string) (RecordedRequest, bool) {
	reqs := b.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Path == path {
			return reqs[i], true
		}
	}
	return RecordedRequest{}, false
}

func (b *Backend) signLocked(email string) (string, error) {
	b.tokenCounter++
	claims := jwt.RegisteredClaims{
		Subject:   email,
		ID:        strconv.Itoa(b.tokenCounter),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}

func (b *Backend) router() *gin.Engine {
	r := gin.New()
	r.Use(b.record)

	auth := r.Group("/auth")
	auth.POST("/login", b.login)
	auth.POST("/register", b.register)
	auth.GET("/me", b.requireUser, b.me)

	ing := r.Group("/ingredients", b.requireUser)
	ing.GET("/", b.listIngredients)
	ing.GET("/expiring/soon", b.listIngredients)
	ing.GET("/:id", b.getIngredient)
	ing.POST("/", b.createIngredient)
	ing.PUT("/:id", b.updateIngredient)
	ing.DELETE("/:id", b.deleteIngredient)

	sl := r.Group("/shopping-lists", b.requireUser)
	sl.GET("/", b.listShoppingLists)
	sl.POST("/", b.createShoppingList)
	sl.GET("/:id", b.getShoppingList)
	sl.DELETE("/:id", b.deleteShoppingList)
	sl.POST("/:id/items", b.addShoppingItem)
	sl.PUT("/items/:id", b.updateShoppingItem)
	sl.DELETE("/items/:id", b.deleteShoppingItem)

	rec := r.Group("/recipes", b.requireUser)
	rec.GET("/", b.listRecipes)
	rec.GET("/match/ingredients", b.listRecipes)
	rec.POST("/seed-sample", b.seedRecipes)

	r.GET("/news/public", b.listPublicNews)
	r.GET("/news/public/:slug", b.getPublicNews)
	r.GET("/news/", b.requireUser, b.requireAdmin, b.listNews)

	r.GET("/pages/public/:key", b.getPublicPage)

	adm := r.Group("/admin", b.requireUser, b.requireAdmin)
	adm.GET("/users", b.listUsers)

	return r
}

func (b *Backend) record(c *gin.Context) {
	rec := RecordedRequest{
		Method:      c.Request.Method,
		Path:        c.Request.URL.Path,
		Query:       c.Request.URL.RawQuery,
		ContentType: c.ContentType(),
		Header:      c.Request.Header.Clone(),
		Form:        map[string]string{},
	}
	if c.Request.Method == http.MethodPost && (strings.HasPrefix(rec.ContentType, "multipart/") ||
		rec.ContentType == "application/x-www-form-urlencoded") {
		for _, key := range []string{"username", "password", "grant_type"} {
			if v, ok := c.GetPostForm(key); ok {
				rec.Form[key] = v
			}
		}
	}

	b.mu.Lock()
	b.requests = append(b.requests, rec)
	b.mu.Unlock()

	c.Next()
}

func detail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

func (b *Backend) requireUser(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if header == "" || token == header {
		detail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return signingKey, nil
	})
	if err != nil {
		detail(c, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	b.mu.Lock()
	acc, ok := b.accounts[claims.Subject]
	revoked := b.revoked[token]
	b.mu.Unlock()
	if !ok || revoked {
		detail(c, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	c.Set("user", acc.user)
	c.Next()
}

func (b *Backend) requireAdmin(c *gin.Context) {
	u := c.MustGet("user").(models.User)
	if !u.IsAdmin {
		detail(c, http.StatusForbidden, "Admin privileges required")
		return
	}
	c.Next()
}

func (b *Backend) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	b.mu.Lock()
	delay := b.loginDelay
	acc, ok := b.accounts[username]
	b.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if !ok || acc.password != password {
		detail(c, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	b.mu.Lock()
	token, err := b.signLocked(username)
	b.mu.Unlock()
	if err != nil {
		detail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, models.Token{AccessToken: token, TokenType: "bearer"})
}

func (b *Backend) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.accounts[req.Email]; exists {
		detail(c, http.StatusBadRequest, "Email already registered")
		return
	}
	c.JSON(http.StatusOK, b.addUserLocked(req.Email, req.Username, req.Password, false))
}

func (b *Backend) me(c *gin.Context) {
	b.mu.Lock()
	status := b.meStatus
	b.mu.Unlock()

	if status != 0 {
		detail(c, status, "profile unavailable")
		return
	}
	c.JSON(http.StatusOK, c.MustGet("user"))
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, fmt.Sprintf("invalid id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}

func (b *Backend) listIngredients(c *gin.Context) {
	location := c.Query("location")

	b.mu.Lock()
	defer b.mu.Unlock()

	out := []models.Ingredient{}
	for id := 1; id < b.nextID; id++ {
		in, ok := b.ingredients[id]
		if !ok || (location != "" && in.Location != location) {
			continue
		}
		out = append(out, in)
	}
	c.JSON(http.StatusOK, out)
}

func (b *Backend) getIngredient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	in, ok := b.ingredients[id]
	if !ok {
		detail(c, http.StatusNotFound, "Ingredient not found")
		return
	}
	c.JSON(http.StatusOK, in)
}

func applyIngredient(dst *models.Ingredient, in models.IngredientInput) {
	if in.Name != nil {
		dst.Name = *in.Name
	}
	if in.Location != nil {
		dst.Location = *in.Location
	}
	if in.Quantity != nil {
		dst.Quantity = *in.Quantity
	}
	if in.Unit != nil {
		dst.Unit = *in.Unit
	}
	if in.ExpiryDate != nil {
		d := *in.ExpiryDate
		dst.ExpiryDate = &d
	}
	if in.Category != nil {
		dst.Category = *in.Category
	}
}

func (b *Backend) createIngredient(c *gin.Context) {
	var in models.IngredientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := models.NewTimestamp(time.Now())
	ing := models.Ingredient{ID: b.nextID, Category: "Unknown", CreatedAt: now, UpdatedAt: now}
	b.nextID++
	applyIngredient(&ing, in)
	b.ingredients[ing.ID] = ing
	c.JSON(http.StatusOK, ing)
}

func (b *Backend) updateIngredient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in models.IngredientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ing, ok := b.ingredients[id]
	if !ok {
		detail(c, http.StatusNotFound, "Ingredient not found")
		return
	}
	applyIngredient(&ing, in)
	ing.UpdatedAt = models.NewTimestamp(time.Now())
	b.ingredients[id] = ing
	c.JSON(http.StatusOK, ing)
}

func (b *Backend) deleteIngredient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.ingredients[id]; !ok {
		detail(c, http.StatusNotFound, "Ingredient not found")
		return
	}
	delete(b.ingredients, id)
	c.JSON(http.StatusOK, gin.H{"message": "Ingredient deleted successfully"})
}

func (b *Backend) listShoppingLists(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := []models.ShoppingList{}
	for id := 1; id < b.nextID; id++ {
		if l, ok := b.lists[id]; ok {
			out = append(out, *l)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (b *Backend) createShoppingList(c *gin.Context) {
	var in models.ShoppingListInput
	if err := c.ShouldBindJSON(&in); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	l := &models.ShoppingList{ID: b.nextID, Name: in.Name, CreatedAt: models.NewTimestamp(time.Now()), Items: []models.ShoppingItem{}}
	b.nextID++
	b.lists[l.ID] = l
	c.JSON(http.StatusOK, l)
}

func (b *Backend) getShoppingList(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	l, ok := b.lists[id]
	if !ok {
		detail(c, http.StatusNotFound, "Shopping list not found")
		return
	}
	c.JSON(http.StatusOK, l)
}

func (b *Backend) deleteShoppingList(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.lists[id]; !ok {
		detail(c, http.StatusNotFound, "Shopping list not found")
		return
	}
	delete(b.lists, id)
	c.JSON(http.StatusOK, gin.H{"message": "Shopping list deleted"})
}

func (b *Backend) addShoppingItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in models.ShoppingItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	l, ok := b.lists[id]
	if !ok {
		detail(c, http.StatusNotFound, "Shopping list not found")
		return
	}
	item := models.ShoppingItem{
		ID:             b.nextID,
		ShoppingListID: id,
		ItemName:       in.ItemName,
		Quantity:       in.Quantity,
		Unit:           in.Unit,
		IsPurchased:    in.IsPurchased,
	}
	b.nextID++
	l.Items = append(l.Items, item)
	c.JSON(http.StatusOK, item)
}

func (b *Backend) findItemLocked(itemID int) (*models.ShoppingList, int) {
	for _, l := range b.lists {
		for i := range l.Items {
			if l.Items[i].ID == itemID {
				return l, i
			}
		}
	}
	return nil, -1
}

func (b *Backend) updateShoppingItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	purchased, err := strconv.ParseBool(c.Query("is_purchased"))
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, "is_purchased must be a boolean")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	l, i := b.findItemLocked(id)
	if l == nil {
		detail(c, http.StatusNotFound, "Item not found")
		return
	}
	l.Items[i].IsPurchased = purchased
	c.JSON(http.StatusOK, l.Items[i])
}

func (b *Backend) deleteShoppingItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	l, i := b.findItemLocked(id)
	if l == nil {
		detail(c, http.StatusNotFound, "Item not found")
		return
	}
	l.Items = append(l.Items[:i], l.Items[i+1:]...)
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted"})
}

func (b *Backend) listRecipes(c *gin.Context) {
	healthyOnly := c.Query("healthy_only") == "true"

	b.mu.Lock()
	defer b.mu.Unlock()

	out := []models.Recipe{}
	for id := 1; id < b.nextID; id++ {
		r, ok := b.recipes[id]
		if !ok || (healthyOnly && !r.IsHealthy) {
			continue
		}
		out = append(out, r)
	}
	c.JSON(http.StatusOK, out)
}

func (b *Backend) seedRecipes(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	samples := []models.Recipe{
		{Name: "Greek Salad", Ingredients: `["tomato","cucumber","feta"]`, Instructions: "Chop and mix.", Servings: 2, IsHealthy: true},
		{Name: "Pancakes", Ingredients: `["flour","milk","egg"]`, Instructions: "Whisk and fry.", Servings: 4, IsHealthy: false},
	}
	for _, r := range samples {
		r.ID = b.nextID
		r.CreatedAt = models.NewTimestamp(time.Now())
		b.nextID++
		b.recipes[r.ID] = r
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Added %d sample recipes", len(samples))})
}

func (b *Backend) listPublicNews(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	b.mu.Lock()
	defer b.mu.Unlock()

	out := []models.NewsPublic{}
	for _, n := range b.news {
		if n.IsPublished {
			out = append(out, toPublic(n))
		}
	}
	if skip > len(out) {
		skip = len(out)
	}
	out = out[skip:]
	if limit < len(out) {
		out = out[:limit]
	}
	c.JSON(http.StatusOK, out)
}

func toPublic(n models.News) models.NewsPublic {
	return models.NewsPublic{
		ID:          n.ID,
		Title:       n.Title,
		Slug:        n.Slug,
		Summary:     n.Summary,
		Content:     n.Content,
		ImageURL:    n.ImageURL,
		PublishedAt: n.PublishedAt,
	}
}

func (b *Backend) getPublicNews(c *gin.Context) {
	slug := c.Param("slug")

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, n := range b.news {
		if n.Slug == slug && n.IsPublished {
			c.JSON(http.StatusOK, toPublic(n))
			return
		}
	}
	detail(c, http.StatusNotFound, "News not found")
}

func (b *Backend) listNews(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, append([]models.News{}, b.news...))
}

func (b *Backend) getPublicPage(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.pages[c.Param("key")]
	if !ok {
		detail(c, http.StatusNotFound, "Page not found")
		return
	}
	c.JSON(http.StatusOK, models.PagePublic{Title: p.Title, Content: p.Content, UpdatedAt: p.UpdatedAt})
}

func (b *Backend) listUsers(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := []models.AdminUser{}
	for _, acc := range b.accounts {
		u := acc.user
		out = append(out, models.AdminUser{
			ID:        u.ID,
			Email:     u.Email,
			Username:  u.Username,
			IsActive:  u.IsActive,
			IsAdmin:   u.IsAdmin,
			CreatedAt: u.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}
