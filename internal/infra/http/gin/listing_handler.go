package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	listingsvc "stayhub/internal/app/services/listing"
	domainlisting "stayhub/internal/domain/listing"
	domainuser "stayhub/internal/domain/user"
)

type ListingHandler struct {
	Service *listingsvc.Service
	Logger  *slog.Logger
}

type createListingRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	Country       string   `json:"country"`
	PricePerNight float64  `json:"pricePerNight"`
	Guests        int      `json:"guests"`
	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     int      `json:"bathrooms"`
	Amenities     []string `json:"amenities"`
	Images        []string `json:"images"`
}

type updateListingRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Address       *string  `json:"address"`
	City          *string  `json:"city"`
	Country       *string  `json:"country"`
	PricePerNight *float64 `json:"pricePerNight"`
	Guests        *int     `json:"guests"`
	Bedrooms      *int     `json:"bedrooms"`
	Bathrooms     *int     `json:"bathrooms"`
	Amenities     []string `json:"amenities"`
	Images        []string `json:"images"`
}

// List is the public catalog endpoint. Filters arrive as
// field[op]=value query keys (gt/gte/lt/lte/in), sorting as a
// comma-separated sort parameter with a '-' prefix for descending.
func (h ListingHandler) List(c *gin.Context) {
	query := parseListingQuery(c)
	result, err := h.Service.List(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respondCollection(c, result.Count, result.Pagination, result.Items)
}

func (h ListingHandler) Get(c *gin.Context) {
	view, err := h.Service.Get(c.Request.Context(), domainlisting.ListingID(c.Param("id")))
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, view)
}

func (h ListingHandler) Create(c *gin.Context) {
	p, ok := requireRole(c, domainuser.RoleHost)
	if !ok {
		return
	}
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	view, err := h.Service.Create(c.Request.Context(), listingCaller(p), listingsvc.CreateParams{
		Title:         req.Title,
		Description:   req.Description,
		Address:       req.Address,
		City:          req.City,
		Country:       req.Country,
		PricePerNight: req.PricePerNight,
		Guests:        req.Guests,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		Amenities:     req.Amenities,
		Images:        req.Images,
	})
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusCreated, view)
}

func (h ListingHandler) Update(c *gin.Context) {
	p, ok := requireRole(c, domainuser.RoleHost, domainuser.RoleAdmin)
	if !ok {
		return
	}
	var req updateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	view, err := h.Service.Update(c.Request.Context(), domainlisting.ListingID(c.Param("id")), listingCaller(p), domainlisting.Update{
		Title:         req.Title,
		Description:   req.Description,
		Address:       req.Address,
		City:          req.City,
		Country:       req.Country,
		PricePerNight: req.PricePerNight,
		Guests:        req.Guests,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		Amenities:     req.Amenities,
		Images:        req.Images,
	})
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, view)
}

func (h ListingHandler) Delete(c *gin.Context) {
	p, ok := requireRole(c, domainuser.RoleHost, domainuser.RoleAdmin)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), domainlisting.ListingID(c.Param("id")), listingCaller(p)); err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{})
}

// UploadPhoto accepts a multipart "photo" part and attaches the stored
// object's public URL to the listing's image set.
func (h ListingHandler) UploadPhoto(c *gin.Context) {
	p, ok := requireRole(c, domainuser.RoleHost, domainuser.RoleAdmin)
	if !ok {
		return
	}
	header, err := c.FormFile("photo")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Please upload a file")
		return
	}
	file, err := header.Open()
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	defer file.Close()
	contentType := header.Header.Get("Content-Type")
	view, err := h.Service.AttachPhoto(c.Request.Context(), domainlisting.ListingID(c.Param("id")), listingCaller(p), header.Filename, contentType, file)
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, view)
}

func listingCaller(p principal) listingsvc.Caller {
	return listingsvc.Caller{ID: p.ID, Role: p.Role}
}

// reservedQueryParams are handled directly and never treated as filters.
var reservedQueryParams = map[string]struct{}{
	"select": {},
	"sort":   {},
	"page":   {},
	"limit":  {},
}

func parseListingQuery(c *gin.Context) domainlisting.Query {
	var query domainlisting.Query
	for key, values := range c.Request.URL.Query() {
		if _, reserved := reservedQueryParams[key]; reserved {
			continue
		}
		field, op, ok := splitFilterKey(key)
		if !ok {
			continue
		}
		for _, raw := range values {
			filter := domainlisting.Filter{Field: field, Op: op, Values: []string{raw}}
			if op == domainlisting.OpIn {
				filter.Values = splitCommaList(raw)
			}
			query.Filters = append(query.Filters, filter)
		}
	}
	query.Sort = domainlisting.ParseSort(c.Query("sort"))
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		query.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		query.Limit = limit
	}
	return query
}

// splitFilterKey decomposes "pricePerNight[lte]" into field and
// operator; a bare key is an equality filter.
func splitFilterKey(key string) (string, domainlisting.Op, bool) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, domainlisting.OpEq, true
	}
	if !strings.HasSuffix(key, "]") || open == 0 {
		return "", "", false
	}
	op, ok := domainlisting.ParseOp(key[open+1 : len(key)-1])
	if !ok {
		return "", "", false
	}
	return key[:open], op, true
}

func splitCommaList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}
	return values
}
