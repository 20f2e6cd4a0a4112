package alerter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildExcerptStripsMarkup(t *testing.T) {
	raw := `<p>Check out <a href="https://example.com">this link</a> now</p>`
	assert.Equal(t, "Check out this link now", BuildExcerpt(raw, 400))
}

func TestBuildExcerptDecodesEntities(t *testing.T) {
	assert.Equal(t, "a & b < c", BuildExcerpt("a &amp; b &lt; c", 400))
}

func TestBuildExcerptSquashesWhitespace(t *testing.T) {
	assert.Equal(t, "one two three", BuildExcerpt("one\n\n  two\t three ", 400))
}

func TestBuildExcerptBoundsRunes(t *testing.T) {
	assert.Equal(t, "héllo", BuildExcerpt("héllo world", 5))
	assert.Equal(t, "日本語", BuildExcerpt("日本語のテキスト", 3))
}

func TestBuildExcerptShortTextUntouched(t *testing.T) {
	assert.Equal(t, "short", BuildExcerpt("short", 400))
	assert.Equal(t, "", BuildExcerpt("", 400))
}

func TestPostURL(t *testing.T) {
	db, engine, _ := newTestEngine(t)

	author := createTestUser(t, db, "alice")
	topic := createTestTopic(t, db, "a topic")
	post := createTestPost(t, db, topic, author, 3)

	inv := engine.newInvocation(post)
	url, err := inv.postURL(post)
	assert.NoError(t, err)
	assert.Contains(t, url, "/t/"+topic.Id+"/3")

	post.Topic.Id = ""
	_, err = inv.postURL(post)
	assert.Error(t, err)
}
