package describe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCompose_TwoParagraphsThreeImages: спорный порядок из политики
// размещения — [para1, heading, img1, para2, img2, img3].
func TestCompose_TwoParagraphsThreeImages(t *testing.T) {
	raw := "First paragraph about the toy.\n\nSecond paragraph with details."
	urls := []string{"http://s/a.jpg", "http://s/b.jpg", "http://s/c.jpg"}

	out := Compose("Magic Ring", raw, urls)
	blocks := strings.Split(out, "\n\n")

	require.Len(t, blocks, 6)
	assert.Equal(t, "First paragraph about the toy.", blocks[0])
	assert.Equal(t, "<h2>Magic Ring</h2>", blocks[1])
	assert.Equal(t, `<img src="http://s/a.jpg" alt="Magic Ring image 1"/>`, blocks[2])
	assert.Equal(t, "Second paragraph with details.", blocks[3])
	assert.Equal(t, `<img src="http://s/b.jpg" alt="Magic Ring image 2"/>`, blocks[4])
	// Третье изображение хвостом: второй абзац потребил только одно
	assert.Equal(t, `<img src="http://s/c.jpg" alt="Magic Ring image 3"/>`, blocks[5])
}

// TestCompose_NoImages: без изображений тегов <img> нет вообще.
func TestCompose_NoImages(t *testing.T) {
	raw := "Opening.\n\nMiddle.\n\nClosing."

	out := Compose("Plain Toy", raw, nil)
	blocks := strings.Split(out, "\n\n")

	require.Len(t, blocks, 4)
	assert.Equal(t, []string{"Opening.", "<h2>Plain Toy</h2>", "Middle.", "Closing."}, blocks)
	assert.NotContains(t, out, "<img")
}

// TestCompose_EmptyTextDegrades: пустой текст модели — заголовок и
// изображения, никакой выдуманной прозы.
func TestCompose_EmptyTextDegrades(t *testing.T) {
	out := Compose("Silent Toy", "", []string{"http://s/a.jpg", "http://s/b.jpg"})
	blocks := strings.Split(out, "\n\n")

	require.Len(t, blocks, 4)
	assert.Equal(t, "", blocks[0])
	assert.Equal(t, "<h2>Silent Toy</h2>", blocks[1])
	assert.Equal(t, `<img src="http://s/a.jpg" alt="Silent Toy image 1"/>`, blocks[2])
	assert.Equal(t, `<img src="http://s/b.jpg" alt="Silent Toy image 2"/>`, blocks[3])
}

// TestCompose_ImageParagraphDoesNotConsumeImage: абзац, который сам
// является <img> строкой, не получает изображение после себя.
func TestCompose_ImageParagraphDoesNotConsumeImage(t *testing.T) {
	raw := "Intro.\n\n<img src=\"http://inline.jpg\"/>\n\nOutro."
	urls := []string{"http://s/a.jpg", "http://s/b.jpg"}

	out := Compose("Toy", raw, urls)
	blocks := strings.Split(out, "\n\n")

	// [Intro, h2, img1, <img inline>, Outro, img2]
	require.Len(t, blocks, 6)
	assert.Equal(t, "<img src=\"http://inline.jpg\"/>", blocks[3])
	assert.Equal(t, "Outro.", blocks[4])
	assert.Equal(t, `<img src="http://s/b.jpg" alt="Toy image 2"/>`, blocks[5])
}

// TestCompose_SingleNewlinesSplitParagraphs: модель не всегда отдаёт
// пустые строки между абзацами, одиночный перенос тоже режет.
func TestCompose_SingleNewlinesSplitParagraphs(t *testing.T) {
	raw := "Line one.\nLine two."

	out := Compose("Toy", raw, nil)
	blocks := strings.Split(out, "\n\n")

	require.Len(t, blocks, 3)
	assert.Equal(t, []string{"Line one.", "<h2>Toy</h2>", "Line two."}, blocks)
}

// TestCompose_RunningIndexIsGlobal: alt индексы сквозные и 1-based.
func TestCompose_RunningIndexIsGlobal(t *testing.T) {
	urls := []string{"u1", "u2", "u3", "u4"}
	out := Compose("T", "P1.\n\nP2.\n\nP3.", urls)

	for i := 1; i <= 4; i++ {
		assert.Contains(t, out, `alt="T image `+string(rune('0'+i))+`"`)
	}
}
