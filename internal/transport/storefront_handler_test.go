package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"archipelago-scent/internal/domain"
	"archipelago-scent/internal/media"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func islandPayload(name string) IslandRequest {
	return IslandRequest{
		Name:  name,
		Story: "Trade winds over black sand",
		Mood:  "serene",
		AromaNotes: domain.AromaNotes{
			Top:   []string{"bergamot"},
			Heart: []string{"frangipani"},
			Base:  []string{"vetiver"},
		},
		ImageURL: "https://example.com/island.jpg",
	}
}

func productPayload(islandID, mood, family string) ProductRequest {
	price, stock := 89.0, 12
	return ProductRequest{
		Name:            "Monoi " + mood,
		IslandID:        islandID,
		Price:           &price,
		Stock:           &stock,
		Description:     "Coconut milk and tiare",
		AromaNotes:      domain.AromaNotes{Top: []string{}, Heart: []string{"tiare"}, Base: []string{}},
		OlfactiveFamily: family,
		Mood:            mood,
		ImageURL:        "https://example.com/monoi.jpg",
	}
}

// validationFields collects the field names reported in a 422 body
func validationFields(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	fieldErrors, ok := decodeError(t, w).Details["validation_errors"].([]interface{})
	require.True(t, ok)

	var fields []string
	for _, fieldError := range fieldErrors {
		fields = append(fields, fieldError.(map[string]interface{})["field"].(string))
	}
	return fields
}

func createIsland(t *testing.T, api *testAPI, token, name string) domain.Island {
	t.Helper()
	w := api.do("POST", "/api/admin/islands", islandPayload(name), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var island domain.Island
	require.NoError(t, json.NewDecoder(w.Body).Decode(&island))
	return island
}

func createProduct(t *testing.T, api *testAPI, token string, payload ProductRequest) domain.Product {
	t.Helper()
	w := api.do("POST", "/api/admin/products", payload, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var product domain.Product
	require.NoError(t, json.NewDecoder(w.Body).Decode(&product))
	return product
}

func TestCatalog_IslandLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.adminToken(t)

	island := createIsland(t, api, token, "Île Maurice")
	assert.NotEmpty(t, island.ID)
	assert.Equal(t, "ile-maurice", island.Slug)

	w := api.do("GET", "/api/islands/"+island.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do("GET", "/api/islands/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "island not found", decodeError(t, w).Message)

	w = api.do("PUT", "/api/admin/islands/"+island.ID, `{"mood":"stormy","story":null}`, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated domain.Island
	require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
	assert.Equal(t, "stormy", updated.Mood)
	assert.Equal(t, island.Story, updated.Story)
	assert.Equal(t, island.Name, updated.Name)

	w = api.do("PUT", "/api/admin/islands/missing", `{"mood":"stormy"}`, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, path := range []string{"/api/islands", "/api/admin/islands"} {
		w = api.do("GET", path, nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		var islands []domain.Island
		require.NoError(t, json.NewDecoder(w.Body).Decode(&islands))
		assert.Len(t, islands, 1)
	}
}

func TestCatalog_CreateIslandValidation(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.adminToken(t)

	w := api.do("POST", "/api/admin/islands", `{"name":"Tahiti"}`, token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	detail := decodeError(t, w)
	assert.Equal(t, "validation failed", detail.Message)
	assert.Contains(t, detail.Details, "validation_errors")
}

func TestCatalog_ProductLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.adminToken(t)

	island := createIsland(t, api, token, "Zanzibar")
	product := createProduct(t, api, token, productPayload(island.ID, "warm", "oriental"))

	assert.Equal(t, "Zanzibar", product.IslandName)
	assert.Equal(t, domain.DefaultProductSize, product.Size)
	assert.NotNil(t, product.Reviews)

	w := api.do("PUT", "/api/admin/products/"+product.ID, `{"stock":0,"description":""}`, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated domain.Product
	require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
	assert.Equal(t, 0, updated.Stock)
	assert.Equal(t, "", updated.Description)
	assert.Equal(t, product.Price, updated.Price)
	assert.Equal(t, product.Name, updated.Name)

	w = api.do("DELETE", "/api/admin/products/"+product.ID, nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var message messageResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&message))
	assert.Equal(t, "Product deleted", message.Message)

	w = api.do("GET", "/api/products/"+product.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do("DELETE", "/api/admin/products/"+product.ID, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalog_CreateProductRequiresPriceStockAndImage(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.adminToken(t)
	island := createIsland(t, api, token, "Bora Bora")

	missing := `{"name":"Tiare","island_id":"` + island.ID + `","description":"Gardenia","olfactive_family":"floral",` +
		`"mood":"serene","aroma_notes":{"top":[],"heart":[],"base":[]}}`
	w := api.do("POST", "/api/admin/products", missing, token)
	assert.ElementsMatch(t, []string{"price", "stock", "image_url"}, validationFields(t, w))

	// An explicit zero price and stock are accepted
	payload := productPayload(island.ID, "serene", "floral")
	zeroPrice, zeroStock := 0.0, 0
	payload.Price, payload.Stock = &zeroPrice, &zeroStock
	product := createProduct(t, api, token, payload)
	assert.Equal(t, 0.0, product.Price)
	assert.Equal(t, 0, product.Stock)

	negative := productPayload(island.ID, "serene", "floral")
	negativePrice := -1.0
	negative.Price = &negativePrice
	w = api.do("POST", "/api/admin/products", negative, token)
	assert.Equal(t, []string{"price"}, validationFields(t, w))
}

func TestCatalog_CreateIslandRequiresImage(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.adminToken(t)

	payload := islandPayload("Moorea")
	payload.ImageURL = ""
	w := api.do("POST", "/api/admin/islands", payload, token)
	assert.Equal(t, []string{"image_url"}, validationFields(t, w))
}

func TestCatalog_CreateProductForUnknownIsland(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.adminToken(t)

	w := api.do("POST", "/api/admin/products", productPayload("missing", "warm", "oriental"), token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Feature: storefront, Property 21: Product filters return exactly the matching products
func TestProperty_ProductFiltersMatchExactly(t *testing.T) {
	// Each run hashes a password with bcrypt
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	moods := []string{"warm", "fresh", "serene"}

	properties.Property("every listed product matches the mood filter and none is missed", prop.ForAll(
		func(picks []int, wanted int) bool {
			api := newTestAPI(t, nil)
			token := api.adminToken(t)
			island := createIsland(t, api, token, "Bora Bora")

			expected := 0
			for _, pick := range picks {
				mood := moods[pick%len(moods)]
				if mood == moods[wanted] {
					expected++
				}
				createProduct(t, api, token, productPayload(island.ID, mood, "floral"))
			}

			w := api.do("GET", "/api/products?mood="+moods[wanted]+"&island_id="+island.ID, nil, "")
			if w.Code != http.StatusOK {
				return false
			}

			var products []domain.Product
			if err := json.NewDecoder(w.Body).Decode(&products); err != nil {
				return false
			}
			if len(products) != expected {
				return false
			}
			for _, product := range products {
				if product.Mood != moods[wanted] || product.IslandID != island.ID {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(6, gen.IntRange(0, 2)),
		gen.IntRange(0, 2),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestQuiz_SubmitRecommendsIsland(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.adminToken(t)

	w := api.do("GET", "/api/quiz", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var empty domain.Quiz
	require.NoError(t, json.NewDecoder(w.Body).Decode(&empty))
	assert.Empty(t, empty.Questions)

	w = api.do("POST", "/api/quiz/submit", QuizSubmission{Answers: []string{"Sea breeze"}}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "quiz not configured", decodeError(t, w).Message)

	reunion := createIsland(t, api, token, "La Réunion")
	corsica := createIsland(t, api, token, "Corsica")
	createProduct(t, api, token, productPayload(reunion.ID, "warm", "oriental"))
	createProduct(t, api, token, productPayload(corsica.ID, "fresh", "aromatic"))

	quiz := QuizRequest{Questions: []domain.QuizQuestion{
		{
			Question: "Pick a morning",
			Options: []domain.QuizOption{
				{Text: "Sea breeze", IslandWeights: map[string]int{corsica.ID: 1}},
				{Text: "Volcano sunrise", IslandWeights: map[string]int{reunion.ID: 3}},
			},
		},
		{
			Question: "Pick an evening",
			Options: []domain.QuizOption{
				{Text: "Spiced rum", IslandWeights: map[string]int{reunion.ID: 3, corsica.ID: 1}},
			},
		},
	}}

	w = api.do("PUT", "/api/admin/quiz", quiz, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var saved domain.Quiz
	require.NoError(t, json.NewDecoder(w.Body).Decode(&saved))
	require.Len(t, saved.Questions, 2)
	for _, question := range saved.Questions {
		assert.NotEmpty(t, question.ID)
	}

	w = api.do("POST", "/api/quiz/submit", QuizSubmission{Answers: []string{"Sea breeze", "Spiced rum"}}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result domain.QuizResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	require.NotNil(t, result.Island)
	assert.Equal(t, reunion.ID, result.Island.ID)
	require.Len(t, result.Products, 1)
	assert.Equal(t, reunion.ID, result.Products[0].IslandID)

	w = api.do("POST", "/api/quiz/submit", QuizSubmission{Answers: []string{"Snowfall"}}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "no valid answers", decodeError(t, w).Message)
}

func TestQuiz_SubmitWithDeletedWinnerIsNotFound(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.adminToken(t)

	quiz := QuizRequest{Questions: []domain.QuizQuestion{{
		Question: "Pick a coast",
		Options:  []domain.QuizOption{{Text: "Lagoon", IslandWeights: map[string]int{"ghost-island": 5}}},
	}}}
	require.Equal(t, http.StatusOK, api.do("PUT", "/api/admin/quiz", quiz, token).Code)

	w := api.do("POST", "/api/quiz/submit", QuizSubmission{Answers: []string{"Lagoon"}}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrders_CreateListAndUpdateStatus(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.adminToken(t)

	order := OrderRequest{
		CustomerName:    "Awa Diop",
		CustomerEmail:   "awa@example.com",
		CustomerPhone:   "+221 77 000 00 00",
		CustomerAddress: "12 Rue des Palmiers, Dakar",
		Items: []domain.OrderItem{
			{ProductID: "p-1", ProductName: "Monoi", Quantity: 2, Price: 100},
			{ProductID: "p-2", ProductName: "Vetiver", Quantity: 1, Price: 50},
		},
	}

	w := api.do("POST", "/api/orders", order, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created domain.Order
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.Equal(t, 250.0, created.Total)
	assert.Equal(t, domain.OrderStatusPending, created.Status)
	assert.Nil(t, created.Notes)

	// A client-supplied total is ignored
	w = api.do("POST", "/api/orders", `{"customer_name":"A","customer_email":"a@example.com","customer_phone":"1","customer_address":"x",`+
		`"items":[{"product_id":"p","product_name":"n","quantity":3,"price":10}],"total":1}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var second domain.Order
	require.NoError(t, json.NewDecoder(w.Body).Decode(&second))
	assert.Equal(t, 30.0, second.Total)

	w = api.do("GET", "/api/admin/orders", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var orders []domain.Order
	require.NoError(t, json.NewDecoder(w.Body).Decode(&orders))
	assert.Len(t, orders, 2)

	w = api.do("PUT", "/api/admin/orders/"+created.ID, OrderStatusRequest{Status: domain.OrderStatusShipped}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var shipped domain.Order
	require.NoError(t, json.NewDecoder(w.Body).Decode(&shipped))
	assert.Equal(t, domain.OrderStatusShipped, shipped.Status)
	assert.Equal(t, created.Total, shipped.Total)

	// Any status may follow any other
	w = api.do("PUT", "/api/admin/orders/"+created.ID, OrderStatusRequest{Status: domain.OrderStatusPending}, token)
	assert.Equal(t, http.StatusOK, w.Code)

	// Free-form statuses are stored as given
	w = api.do("PUT", "/api/admin/orders/"+created.ID, `{"status":"on_hold"}`, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var onHold domain.Order
	require.NoError(t, json.NewDecoder(w.Body).Decode(&onHold))
	assert.Equal(t, domain.OrderStatus("on_hold"), onHold.Status)

	w = api.do("GET", "/api/admin/orders", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&orders))
	statuses := map[string]domain.OrderStatus{}
	for _, o := range orders {
		statuses[o.ID] = o.Status
	}
	assert.Equal(t, domain.OrderStatus("on_hold"), statuses[created.ID])

	// An empty status is still a validation failure
	w = api.do("PUT", "/api/admin/orders/"+created.ID, `{"status":""}`, token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do("PUT", "/api/admin/orders/missing", OrderStatusRequest{Status: domain.OrderStatusCancelled}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrders_RejectInvalidPayloads(t *testing.T) {
	api := newTestAPI(t, nil)

	bodies := []string{
		`{"customer_name":"A","customer_email":"a@example.com","customer_phone":"1","customer_address":"x","items":[]}`,
		`{"customer_name":"A","customer_email":"nope","customer_phone":"1","customer_address":"x","items":[{"product_id":"p","product_name":"n","quantity":1,"price":1}]}`,
		`{"customer_name":"A","customer_email":"a@example.com","customer_phone":"1","customer_address":"x","items":[{"product_id":"p","product_name":"n","quantity":0,"price":1}]}`,
		`{"customer_name":"A"`,
	}

	for _, body := range bodies {
		w := api.do("POST", "/api/orders", body, "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, body)
	}
}

func TestContent_ThemeAndFAQ(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.adminToken(t)

	w := api.do("GET", "/api/theme", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var theme domain.ThemeSettings
	require.NoError(t, json.NewDecoder(w.Body).Decode(&theme))
	assert.Equal(t, "#2C3639", theme.PrimaryColor)
	assert.Empty(t, theme.HeroImages)

	payload := `{"accent_color":"#FF6F61","hero_images":["https://example.com/hero.jpg"]}`
	for i := 0; i < 2; i++ {
		w = api.do("PUT", "/api/admin/theme", payload, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&theme))
	assert.Equal(t, "#FF6F61", theme.AccentColor)
	assert.Equal(t, "#2C3639", theme.PrimaryColor)
	assert.Equal(t, []string{"https://example.com/hero.jpg"}, theme.HeroImages)

	for _, item := range []FAQRequest{
		{Question: "Shipping?", Answer: "Worldwide", Order: 2},
		{Question: "Returns?", Answer: "Within 30 days", Order: 0},
		{Question: "Samples?", Answer: "Yes", Order: 1},
	} {
		require.Equal(t, http.StatusCreated, api.do("POST", "/api/admin/faq", item, token).Code)
	}

	w = api.do("GET", "/api/faq", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var items []domain.FAQItem
	require.NoError(t, json.NewDecoder(w.Body).Decode(&items))
	require.Len(t, items, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{items[0].Order, items[1].Order, items[2].Order})

	w = api.do("PUT", "/api/admin/faq/"+items[0].ID, `{"answer":"Within 14 days"}`, token)
	require.Equal(t, http.StatusOK, w.Code)
	var updated domain.FAQItem
	require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
	assert.Equal(t, "Within 14 days", updated.Answer)
	assert.Equal(t, "Returns?", updated.Question)

	w = api.do("DELETE", "/api/admin/faq/"+items[0].ID, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var message messageResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&message))
	assert.Equal(t, "FAQ deleted", message.Message)

	assert.Equal(t, http.StatusNotFound, api.do("DELETE", "/api/admin/faq/"+items[0].ID, nil, token).Code)
	assert.Equal(t, http.StatusNotFound, api.do("PUT", "/api/admin/faq/missing", `{"order":3}`, token).Code)
}

type fakeUploader struct {
	uploaded []byte
}

func (f *fakeUploader) Upload(ctx context.Context, file io.Reader) (*media.UploadResult, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	f.uploaded = data
	return &media.UploadResult{URL: "https://res.cloudinary.com/demo/image/upload/hero.png", PublicID: "archipelago/hero"}, nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func uploadRequest(t *testing.T, token, field string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, "hero.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/admin/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUpload(t *testing.T) {
	t.Run("stores images", func(t *testing.T) {
		uploader := &fakeUploader{}
		api := newTestAPI(t, uploader)
		token := api.adminToken(t)

		w := httptest.NewRecorder()
		api.router.ServeHTTP(w, uploadRequest(t, token, "file", pngHeader))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var result media.UploadResult
		require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		assert.Equal(t, "archipelago/hero", result.PublicID)
		assert.Equal(t, pngHeader, uploader.uploaded)
	})

	t.Run("rejects non images", func(t *testing.T) {
		uploader := &fakeUploader{}
		api := newTestAPI(t, uploader)
		token := api.adminToken(t)

		w := httptest.NewRecorder()
		api.router.ServeHTTP(w, uploadRequest(t, token, "file", []byte("just some notes")))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Nil(t, uploader.uploaded)
	})

	t.Run("requires the file field", func(t *testing.T) {
		api := newTestAPI(t, &fakeUploader{})
		token := api.adminToken(t)

		w := httptest.NewRecorder()
		api.router.ServeHTTP(w, uploadRequest(t, token, "image", pngHeader))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("unconfigured uploads are unavailable", func(t *testing.T) {
		api := newTestAPI(t, nil)
		token := api.adminToken(t)

		w := httptest.NewRecorder()
		api.router.ServeHTTP(w, uploadRequest(t, token, "file", pngHeader))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "image uploads are not configured", decodeError(t, w).Message)
	})
}
