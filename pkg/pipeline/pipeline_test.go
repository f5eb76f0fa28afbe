package pipeline

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/ilkoid/woo-ingest/pkg/supplier"
	"github.com/ilkoid/woo-ingest/pkg/woo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validJPEG — полноценный артефакт здесь не нужен: normalizer тоже мок.
var validJPEG = []byte("jpeg-bytes")

// fakeStore скриптует ответы магазина и пишет хронологию вызовов.
type fakeStore struct {
	uploadResults []error // nil = успех; расходуются по одному на вызов
	createResults []error // nil = успех
	uploadCalls   int
	createCalls   int
	codes         []string // Все переданные SetTwoFactorCode значения
	events        *[]string
}

func (f *fakeStore) record(event string) {
	if f.events != nil {
		*f.events = append(*f.events, event)
	}
}

func (f *fakeStore) UploadMedia(_ context.Context, _ []byte, filename string) (*woo.Media, error) {
	f.record("upload:" + filename)
	var err error
	if f.uploadCalls < len(f.uploadResults) {
		err = f.uploadResults[f.uploadCalls]
	}
	f.uploadCalls++
	if err != nil {
		return nil, err
	}
	return &woo.Media{ID: int64(100 + f.uploadCalls), SourceURL: "http://shop/media/" + filename}, nil
}

func (f *fakeStore) CreateProduct(_ context.Context, payload *woo.ListingPayload) (*woo.CreatedProduct, error) {
	f.record("create:" + payload.SKU)
	var err error
	if f.createCalls < len(f.createResults) {
		err = f.createResults[f.createCalls]
	}
	f.createCalls++
	if err != nil {
		return nil, err
	}
	return &woo.CreatedProduct{ID: 9001}, nil
}

func (f *fakeStore) SetTwoFactorCode(code string) {
	f.record("code:" + code)
	f.codes = append(f.codes, code)
}

// fakeSource отдаёт байты по URL, с возможностью сбоев на отдельных URL.
type fakeSource struct {
	failURLs map[string]bool
}

func (f *fakeSource) FetchImage(_ context.Context, url string) ([]byte, error) {
	if f.failURLs[url] {
		return nil, errors.New("connection reset")
	}
	return validJPEG, nil
}

// fakeNormalizer пропускает байты как есть; может сбоить по счётчику.
type fakeNormalizer struct {
	failOnCall int // 1-based; 0 = никогда
	calls      int
}

func (f *fakeNormalizer) Normalize(data []byte) ([]byte, error) {
	f.calls++
	if f.failOnCall != 0 && f.calls == f.failOnCall {
		return nil, errors.New("decode image: unknown format")
	}
	return data, nil
}

// fakeGenerator отдаёт фиксированную прозу.
type fakeGenerator struct {
	text string
	err  error
}

func (f *fakeGenerator) Generate(context.Context, string, string) (string, error) {
	return f.text, f.err
}

// scriptedPrompter отдаёт заранее заготовленные ответы оператора.
type scriptedPrompter struct {
	codes      []string
	codeCalls  int
	retryReply bool
	retryCalls int
}

func (s *scriptedPrompter) TwoFactorCode() (string, error) {
	code := "000000"
	if s.codeCalls < len(s.codes) {
		code = s.codes[s.codeCalls]
	}
	s.codeCalls++
	return code, nil
}

func (s *scriptedPrompter) ConfirmRetry(string) (bool, error) {
	s.retryCalls++
	return s.retryReply, nil
}

func testProduct() *supplier.Product {
	return &supplier.Product{
		Name:        "magic ring",
		Description: "a ring",
		Barcode:     "WT1001",
		Price:       supplier.Decimal(10),
		Color:       "red",
		Images: []supplier.ProductImage{
			{ImageLargeURL: "http://w/1.jpg"},
			{ImageLargeURL: "http://w/2.jpg"},
			{ImageLargeURL: "http://w/3.jpg"},
		},
		Categories: []supplier.ProductCategory{{Name: "Rings"}},
	}
}

func newTestPipeline(t *testing.T, store *fakeStore, source *fakeSource, norm *fakeNormalizer, prompter *scriptedPrompter) *Pipeline {
	t.Helper()
	return New(Options{
		Store:       store,
		Source:      source,
		Normalizer:  norm,
		Generator:   &fakeGenerator{text: "First para.\n\nSecond para."},
		Prompter:    prompter,
		Attempts:    3,
		CreateDelay: time.Millisecond,
		WorkDir:     t.TempDir(),
	})
}

// TestRun_HappyPath: все изображения загружены, листинг создан,
// payload собран из результатов стадий.
func TestRun_HappyPath(t *testing.T) {
	store := &fakeStore{}
	prompter := &scriptedPrompter{codes: []string{"123456"}}
	p := newTestPipeline(t, store, &fakeSource{}, &fakeNormalizer{}, prompter)

	outcome := p.Run(context.Background(), testProduct(), "Magic Ring", []int{0, 15, 22})

	require.NoError(t, outcome.Err)
	assert.Equal(t, int64(9001), outcome.ListingID)
	assert.Len(t, outcome.Images.Uploaded, 3)
	assert.Equal(t, 0, outcome.Images.Failed)
	assert.False(t, outcome.Images.Aborted)
	assert.Equal(t, []string{"123456"}, store.codes)
}

// TestRun_CodeCapturedBeforeImages: 2FA код запрашивается один раз,
// до первой загрузки.
func TestRun_CodeCapturedBeforeImages(t *testing.T) {
	var events []string
	store := &fakeStore{events: &events}
	prompter := &scriptedPrompter{codes: []string{"111111"}}
	p := newTestPipeline(t, store, &fakeSource{}, &fakeNormalizer{}, prompter)

	p.Run(context.Background(), testProduct(), "Magic Ring", []int{0})

	require.NotEmpty(t, events)
	assert.Equal(t, "code:111111", events[0])
	assert.Equal(t, 1, prompter.codeCalls)
}

// TestUploadImages_PerImageIsolation: сбой fetch и сбой decode пропускают
// только своё изображение.
func TestUploadImages_PerImageIsolation(t *testing.T) {
	store := &fakeStore{}
	source := &fakeSource{failURLs: map[string]bool{"http://w/1.jpg": true}}
	norm := &fakeNormalizer{failOnCall: 1} // Первый дошедший до normalize (2.jpg) падает
	p := newTestPipeline(t, store, source, norm, &scriptedPrompter{})

	result := p.uploadImages(context.Background(), "WT1001", "Magic Ring",
		[]string{"http://w/1.jpg", "http://w/2.jpg", "http://w/3.jpg"})

	assert.Equal(t, 2, result.Failed)
	assert.False(t, result.Aborted)
	require.Len(t, result.Uploaded, 1)
	assert.Contains(t, result.Uploaded[0].URL, "Magic_Ring_3.jpg")
}

// TestUploadImages_RetryCeiling: три не-2FA сбоя подряд + отказ оператора —
// изображение не в списке, остаток батча брошен.
func TestUploadImages_RetryCeiling(t *testing.T) {
	transientErr := &woo.StatusError{Code: 500, Body: "upstream"}
	store := &fakeStore{uploadResults: []error{transientErr, transientErr, transientErr}}
	prompter := &scriptedPrompter{retryReply: false}
	p := newTestPipeline(t, store, &fakeSource{}, &fakeNormalizer{}, prompter)

	result := p.uploadImages(context.Background(), "WT1001", "Magic Ring",
		[]string{"http://w/1.jpg", "http://w/2.jpg"})

	assert.Equal(t, 3, store.uploadCalls, "exactly the attempt budget")
	assert.Equal(t, 1, prompter.retryCalls)
	assert.True(t, result.Aborted)
	assert.Empty(t, result.Uploaded)
	// Второе изображение не ушло даже в fetch — считаем только первое
	assert.Equal(t, 1, result.Failed)
}

// TestUploadImages_OperatorRestartsBudget: согласие оператора даёт свежий
// бюджет, и повторная серия может закончиться успехом.
func TestUploadImages_OperatorRestartsBudget(t *testing.T) {
	transientErr := &woo.StatusError{Code: 502, Body: "bad gateway"}
	store := &fakeStore{uploadResults: []error{transientErr, transientErr, transientErr, nil}}
	prompter := &scriptedPrompter{retryReply: true}
	p := newTestPipeline(t, store, &fakeSource{}, &fakeNormalizer{}, prompter)

	result := p.uploadImages(context.Background(), "WT1001", "Magic Ring",
		[]string{"http://w/1.jpg"})

	assert.False(t, result.Aborted)
	require.Len(t, result.Uploaded, 1)
	assert.Equal(t, 4, store.uploadCalls)
}

// TestUploadImages_TwoFactorDoesNotConsumeBudget: challenge не тратит
// попытки — после двух challenge и успеха счетчик повторов не исчерпан.
func TestUploadImages_TwoFactorDoesNotConsumeBudget(t *testing.T) {
	store := &fakeStore{uploadResults: []error{
		woo.ErrTwoFactorRequired,
		woo.ErrTwoFactorRequired,
		nil,
	}}
	prompter := &scriptedPrompter{codes: []string{"111111", "222222"}}
	p := newTestPipeline(t, store, &fakeSource{}, &fakeNormalizer{}, prompter)

	result := p.uploadImages(context.Background(), "WT1001", "Magic Ring",
		[]string{"http://w/1.jpg"})

	require.Len(t, result.Uploaded, 1)
	assert.Equal(t, 2, prompter.codeCalls, "one prompt per challenge")
	assert.Equal(t, []string{"111111", "222222"}, store.codes)
	assert.Equal(t, 0, prompter.retryCalls, "budget never exhausted")
}

// TestUploadImages_ArtifactsCleanedUp: рабочая директория пуста после
// успешной стадии изображений.
func TestUploadImages_ArtifactsCleanedUp(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(t, store, &fakeSource{}, &fakeNormalizer{}, &scriptedPrompter{})

	p.uploadImages(context.Background(), "WT1001", "Magic Ring",
		[]string{"http://w/1.jpg", "http://w/2.jpg"})

	entries, err := os.ReadDir(p.workDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "artifacts must be removed after upload")
}

// TestRun_CreateRetriesThenSucceeds: транзиентные сбои создания
// поглощаются бюджетом повторов.
func TestRun_CreateRetriesThenSucceeds(t *testing.T) {
	store := &fakeStore{createResults: []error{
		errors.New("create product failed: timeout"),
		errors.New("create product failed: timeout"),
		nil,
	}}
	p := newTestPipeline(t, store, &fakeSource{}, &fakeNormalizer{}, &scriptedPrompter{})

	outcome := p.Run(context.Background(), testProduct(), "Magic Ring", []int{0})

	require.NoError(t, outcome.Err)
	assert.Equal(t, int64(9001), outcome.ListingID)
	assert.Equal(t, 3, store.createCalls)
}

// TestRun_CreateExhaustionReportsFailure: исчерпание бюджета — ошибка
// в Outcome, частичный листинг не создаётся.
func TestRun_CreateExhaustionReportsFailure(t *testing.T) {
	boom := errors.New("create product failed: forbidden")
	store := &fakeStore{createResults: []error{boom, boom, boom}}
	p := newTestPipeline(t, store, &fakeSource{}, &fakeNormalizer{}, &scriptedPrompter{})

	outcome := p.Run(context.Background(), testProduct(), "Magic Ring", []int{0})

	require.Error(t, outcome.Err)
	assert.ErrorIs(t, outcome.Err, boom)
	assert.Zero(t, outcome.ListingID)
	assert.Equal(t, 3, store.createCalls)
}

// TestRun_GeneratorFailureDegrades: сбой генерации не роняет товар,
// листинг создаётся с деградированным описанием.
func TestRun_GeneratorFailureDegrades(t *testing.T) {
	store := &fakeStore{}
	p := New(Options{
		Store:       store,
		Source:      &fakeSource{},
		Normalizer:  &fakeNormalizer{},
		Generator:   &fakeGenerator{err: errors.New("llm unavailable")},
		Prompter:    &scriptedPrompter{},
		Attempts:    3,
		CreateDelay: time.Millisecond,
		WorkDir:     t.TempDir(),
	})

	outcome := p.Run(context.Background(), testProduct(), "Magic Ring", []int{0})

	require.NoError(t, outcome.Err)
	assert.Equal(t, int64(9001), outcome.ListingID)
}
