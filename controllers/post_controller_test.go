package controllers_test

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube-api/models"
)

func TestIndexListsPostsNewestFirst(t *testing.T) {
	env := newEnv(t)
	author := createUser(t, env.db, "leo")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	old := createPost(t, env.db, author, "old post", base)
	mid := createPost(t, env.db, author, "middle post", base.Add(time.Hour))
	fresh := createPost(t, env.db, author, "fresh post", base.Add(2*time.Hour))

	w := doGET(env.r, "/", "")
	require.Equal(t, http.StatusOK, w.Code)

	items := dataItems(t, decode(t, w))
	require.Len(t, items, 3)
	assert.Equal(t, fresh.ID, itemID(t, items[0]))
	assert.Equal(t, mid.ID, itemID(t, items[1]))
	assert.Equal(t, old.ID, itemID(t, items[2]))
}

func TestIndexPaginationWindowAndClamp(t *testing.T) {
	env := newEnv(t)
	author := createUser(t, env.db, "prolific")

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		createPost(t, env.db, author, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	w := doGET(env.r, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	env1 := decode(t, w)
	assert.Len(t, dataItems(t, env1), 10)

	pg, ok := env1.Data["pagination"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), pg["page"])
	assert.Equal(t, float64(15), pg["total"])
	assert.Equal(t, float64(2), pg["total_pages"])
	assert.Equal(t, true, pg["has_next"])

	w = doGET(env.r, "/?page=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	env2 := decode(t, w)
	assert.Len(t, dataItems(t, env2), 5)

	// Out-of-range pages clamp to the last valid page instead of erroring.
	w = doGET(env.r, "/?page=99", "")
	require.Equal(t, http.StatusOK, w.Code)
	env99 := decode(t, w)
	assert.Len(t, dataItems(t, env99), 5)
	pg99, _ := env99.Data["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pg99["page"])
}

func TestGroupPostsFiltersBySlug(t *testing.T) {
	env := newEnv(t)
	author := createUser(t, env.db, "ann")

	group := models.Group{Title: "Cats", Slug: "cats", Description: "about cats"}
	require.NoError(t, env.db.Create(&group).Error)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	inGroup := models.Post{Text: "a cat post", AuthorID: author.ID, GroupID: &group.ID, Created: base}
	require.NoError(t, env.db.Create(&inGroup).Error)
	createPost(t, env.db, author, "ungrouped post", base.Add(time.Minute))

	w := doGET(env.r, "/group/cats/", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)

	items := dataItems(t, body)
	require.Len(t, items, 1)
	assert.Equal(t, inGroup.ID, itemID(t, items[0]))

	g, ok := body.Data["group"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "cats", g["slug"])
}

func TestGroupPostsUnknownSlugIs404(t *testing.T) {
	env := newEnv(t)

	w := doGET(env.r, "/group/no-such-group/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileShowsAuthorPostsAndFollowingFlag(t *testing.T) {
	env := newEnv(t)
	author := createUser(t, env.db, "author")
	other := createUser(t, env.db, "other")
	viewer := createUser(t, env.db, "viewer")

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	createPost(t, env.db, author, "mine", base)
	createPost(t, env.db, other, "not mine", base.Add(time.Minute))

	// Anonymous viewers are never "following".
	w := doGET(env.r, "/profile/author/", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	items := dataItems(t, body)
	require.Len(t, items, 1)
	assert.Equal(t, false, body.Data["following"])
	assert.Equal(t, float64(1), body.Data["posts_total"])

	require.NoError(t, env.db.Create(&models.Follow{UserID: viewer.ID, AuthorID: author.ID}).Error)

	w = doGET(env.r, "/profile/author/", tokenFor(t, viewer))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w).Data["following"])
}

func TestProfileUnknownUserIs404(t *testing.T) {
	env := newEnv(t)

	w := doGET(env.r, "/profile/nobody/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostDetailWithCommentsNewestFirst(t *testing.T) {
	env := newEnv(t)
	author := createUser(t, env.db, "writer")
	commenter := createUser(t, env.db, "reader")

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	post := createPost(t, env.db, author, "a post worth commenting on", base)
	createPost(t, env.db, author, "another one", base.Add(time.Minute))

	first := models.Comment{Text: "first", PostID: post.ID, AuthorID: commenter.ID, Created: base.Add(time.Hour)}
	second := models.Comment{Text: "second", PostID: post.ID, AuthorID: commenter.ID, Created: base.Add(2 * time.Hour)}
	require.NoError(t, env.db.Create(&first).Error)
	require.NoError(t, env.db.Create(&second).Error)

	w := doGET(env.r, fmt.Sprintf("/posts/%d/", post.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)

	comments, ok := body.Data["comments"].([]any)
	require.True(t, ok)
	require.Len(t, comments, 2)
	assert.Equal(t, second.ID, itemID(t, comments[0]))
	assert.Equal(t, first.ID, itemID(t, comments[1]))
	assert.Equal(t, float64(2), body.Data["posts_total"])
}

func TestPostDetailUnknownIDIs404(t *testing.T) {
	env := newEnv(t)

	w := doGET(env.r, "/posts/999999/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRequiresLogin(t *testing.T) {
	env := newEnv(t)

	w := doForm(env.r, http.MethodPost, "/create/", "", url.Values{"text": {"hi"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/auth/login/?next="),
		"location: %s", w.Header().Get("Location"))

	var count int64
	env.db.Model(&models.Post{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreatePersistsAndRedirectsToProfile(t *testing.T) {
	env := newEnv(t)
	author := createUser(t, env.db, "maker")

	group := models.Group{Title: "Dogs", Slug: "dogs"}
	require.NoError(t, env.db.Create(&group).Error)

	form := url.Values{"text": {"my new post"}, "group": {fmt.Sprint(group.ID)}}
	w := doForm(env.r, http.MethodPost, "/create/", tokenFor(t, author), form)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/maker/", w.Header().Get("Location"))

	var post models.Post
	require.NoError(t, env.db.First(&post).Error)
	assert.Equal(t, "my new post", post.Text)
	assert.Equal(t, author.ID, post.AuthorID)
	require.NotNil(t, post.GroupID)
	assert.Equal(t, group.ID, *post.GroupID)
}

func TestCreateValidationWritesNothing(t *testing.T) {
	env := newEnv(t)
	author := createUser(t, env.db, "sloppy")
	token := tokenFor(t, author)

	w := doForm(env.r, http.MethodPost, "/create/", token, url.Values{"text": {"   "}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	errs, ok := body.Data["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "text")

	w = doForm(env.r, http.MethodPost, "/create/", token,
		url.Values{"text": {"fine"}, "group": {"424242"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	errs, _ = decode(t, w).Data["errors"].(map[string]any)
	assert.Contains(t, errs, "group")

	var count int64
	env.db.Model(&models.Post{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestEditByAuthorUpdatesInPlace(t *testing.T) {
	env := newEnv(t)
	author := createUser(t, env.db, "editor")
	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	post := createPost(t, env.db, author, "original text", created)

	path := fmt.Sprintf("/posts/%d/edit/", post.ID)
	w := doForm(env.r, http.MethodPost, path, tokenFor(t, author), url.Values{"text": {"revised text"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), w.Header().Get("Location"))

	var reloaded models.Post
	require.NoError(t, env.db.First(&reloaded, post.ID).Error)
	assert.Equal(t, "revised text", reloaded.Text)
	assert.True(t, reloaded.Created.Equal(created), "created must never change on edit")
}

func TestEditByNonAuthorRedirectsWithoutChange(t *testing.T) {
	env := newEnv(t)
	author := createUser(t, env.db, "owner")
	intruder := createUser(t, env.db, "intruder")
	post := createPost(t, env.db, author, "untouchable", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	path := fmt.Sprintf("/posts/%d/edit/", post.ID)
	token := tokenFor(t, intruder)

	// Both the form and the submit path use the same silent redirect.
	w := doGET(env.r, path, token)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), w.Header().Get("Location"))

	w = doForm(env.r, http.MethodPost, path, token, url.Values{"text": {"hijacked"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), w.Header().Get("Location"))

	var reloaded models.Post
	require.NoError(t, env.db.First(&reloaded, post.ID).Error)
	assert.Equal(t, "untouchable", reloaded.Text)
}

func TestCommentGETOnlyRedirects(t *testing.T) {
	env := newEnv(t)
	author := createUser(t, env.db, "poster")
	post := createPost(t, env.db, author, "text", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	w := doGET(env.r, fmt.Sprintf("/posts/%d/comment/", post.ID), tokenFor(t, author))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), w.Header().Get("Location"))

	var count int64
	env.db.Model(&models.Comment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestAddCommentPersistsAndSanitizes(t *testing.T) {
	env := newEnv(t)
	author := createUser(t, env.db, "poster")
	commenter := createUser(t, env.db, "commenter")
	post := createPost(t, env.db, author, "text", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	path := fmt.Sprintf("/posts/%d/comment/", post.ID)
	form := url.Values{"text": {`nice one<script>alert(1)</script>`}}
	w := doForm(env.r, http.MethodPost, path, tokenFor(t, commenter), form)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), w.Header().Get("Location"))

	var comment models.Comment
	require.NoError(t, env.db.First(&comment).Error)
	assert.Equal(t, post.ID, comment.PostID)
	assert.Equal(t, commenter.ID, comment.AuthorID)
	assert.NotContains(t, comment.Text, "<script>")
	assert.Contains(t, comment.Text, "nice one")
}

func TestAddCommentValidation(t *testing.T) {
	env := newEnv(t)
	author := createUser(t, env.db, "poster")
	post := createPost(t, env.db, author, "text", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	token := tokenFor(t, author)
	path := fmt.Sprintf("/posts/%d/comment/", post.ID)

	w := doForm(env.r, http.MethodPost, path, token, url.Values{"text": {"  "}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doForm(env.r, http.MethodPost, path, token,
		url.Values{"text": {strings.Repeat("x", models.MaxCommentLength+1)}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	env.db.Model(&models.Comment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestAddCommentRequiresLogin(t *testing.T) {
	env := newEnv(t)
	author := createUser(t, env.db, "poster")
	post := createPost(t, env.db, author, "text", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	path := fmt.Sprintf("/posts/%d/comment/", post.ID)
	w := doForm(env.r, http.MethodPost, path, "", url.Values{"text": {"anonymous remark"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/auth/login/?next=")

	var count int64
	env.db.Model(&models.Comment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestAddCommentUnknownPostIs404(t *testing.T) {
	env := newEnv(t)
	user := createUser(t, env.db, "lost")

	w := doForm(env.r, http.MethodPost, "/posts/424242/comment/", tokenFor(t, user),
		url.Values{"text": {"hello?"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
