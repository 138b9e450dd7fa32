package certificate

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderProducesPNG(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render(Details{
		LearnerName:      "Ada Lovelace",
		CourseTitle:      "Analytical Engines for Beginners",
		InstructorName:   "Charles Babbage",
		IssueDate:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		VerificationCode: "VK-ABCD-EFGH-IJKL",
	})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, width, img.Bounds().Dx())
	assert.Equal(t, height, img.Bounds().Dy())
}
