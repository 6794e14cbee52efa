package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rol3ert99/CookbookAPP-backend/internal/logger"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/prompt"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/recipe"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/testhelpers/mocks"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/vocabulary"
)

const pancakesJSON = `{"dishes":[{"name":"Pancakes","category":"Breakfast","cuisine":"American","time":"15","description":"Fluffy pancakes","ingredients":{"egg":"1","flour":"1 cup","milk":"1 cup"},"steps":["Mix","Cook"],"nutrition":{"calories":"300","fat":"10g","protein":"8g","sugar":"5g","carbohydrates":"40g","fiber":"2g"},"image_description":"A stack of pancakes"}]}`

const twoDishesJSON = `{"dishes":[
{"name":"Omelette","category":"Breakfast","cuisine":"French","time":10,"description":"Soft omelette","ingredients":{"egg":3},"steps":["Whisk","Fry"],"nutrition":{"calories":250,"fat":"18g","protein":"18g","sugar":"1g","carbohydrates":"2g","fiber":"0g"},"image_description":"Golden omelette"},
{"name":"Crepes","category":"Dessert","cuisine":"French","time":"30","description":"Thin crepes","ingredients":{"egg":"2","flour":"1 cup","milk":"2 cups"},"steps":["Mix","Rest","Fry"],"nutrition":{"calories":"350","fat":"12g","protein":"10g","sugar":"15g","carbohydrates":"50g","fiber":"1g"},"image_description":"Folded crepes"}
]}`

func newTestService(t *testing.T, completer Completer, policy recipe.Policy, opts ...IdeasOption) *IdeasService {
	t.Helper()
	vocab := vocabulary.Default()
	builder, err := prompt.NewBuilder(vocab)
	require.NoError(t, err)
	validator, err := recipe.NewValidator(vocab, policy)
	require.NoError(t, err)

	svc, err := NewIdeasService(builder, completer, validator, logger.Nop(), opts...)
	require.NoError(t, err)
	return svc
}

// assertVocabulary is the compliance oracle for stubbed dishes
func assertVocabulary(t *testing.T, vocab *vocabulary.Registry, dishes []recipe.Dish) {
	t.Helper()
	for i, d := range dishes {
		assert.True(t, vocab.HasCategory(d.Category), "dish %d category %q", i, d.Category)
		assert.True(t, vocab.HasCuisine(d.Cuisine), "dish %d cuisine %q", i, d.Cuisine)
	}
}

func TestNewIdeasServiceRequiresCollaborators(t *testing.T) {
	_, err := NewIdeasService(nil, &stubCompleter{}, nil, logger.Nop())
	assert.Error(t, err)
}

func TestSuggest(t *testing.T) {
	t.Run("pancake scenario", func(t *testing.T) {
		ctx := context.Background()
		completer := &stubCompleter{reply: pancakesJSON}
		gen := new(mocks.ImageGenerator)
		gen.On("GenerateImage", mock.Anything, "A stack of pancakes").Return("http://img/1", nil).Once()

		svc := newTestService(t, completer, recipe.PolicyPass, WithImages(gen))

		resp, err := svc.Suggest(ctx, []string{"egg", "flour", "milk"})
		require.NoError(t, err)
		require.Len(t, resp.Dishes, 1)

		assert.Equal(t, "http://img/1", resp.Dishes[0].ImageURL)
		assert.Empty(t, resp.Dishes[0].ImageDescription)
		assert.Contains(t, completer.prompts[0], "['egg', 'flour', 'milk']")
		assertVocabulary(t, vocabulary.Default(), resp.Dishes)
		gen.AssertExpectations(t)
	})

	t.Run("one image per dish in order", func(t *testing.T) {
		gen := new(mocks.ImageGenerator)
		var order []string
		record := func(args mock.Arguments) { order = append(order, args.String(1)) }
		gen.On("GenerateImage", mock.Anything, "Golden omelette").Run(record).Return("http://img/1", nil).Once()
		gen.On("GenerateImage", mock.Anything, "Folded crepes").Run(record).Return("http://img/2", nil).Once()

		svc := newTestService(t, &stubCompleter{reply: twoDishesJSON}, recipe.PolicyPass, WithImages(gen))

		resp, err := svc.Suggest(context.Background(), []string{"egg", "flour", "milk"})
		require.NoError(t, err)

		assert.Equal(t, []string{"Golden omelette", "Folded crepes"}, order)
		assert.Equal(t, "Omelette", resp.Dishes[0].Name)
		assert.Equal(t, "http://img/1", resp.Dishes[0].ImageURL)
		assert.Equal(t, "http://img/2", resp.Dishes[1].ImageURL)
		for _, d := range resp.Dishes {
			assert.Empty(t, d.ImageDescription)
		}
		assertVocabulary(t, vocabulary.Default(), resp.Dishes)
	})

	t.Run("round trip without images", func(t *testing.T) {
		svc := newTestService(t, &stubCompleter{reply: twoDishesJSON}, recipe.PolicyPass)
		assert.False(t, svc.ImagesEnabled())

		resp, err := svc.Suggest(context.Background(), []string{"egg"})
		require.NoError(t, err)

		out, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.JSONEq(t, twoDishesJSON, string(out))
	})

	t.Run("empty ingredient list", func(t *testing.T) {
		completer := &stubCompleter{reply: `{"dishes": []}`}
		svc := newTestService(t, completer, recipe.PolicyPass, WithImages(new(mocks.ImageGenerator)))

		resp, err := svc.Suggest(context.Background(), []string{})
		require.NoError(t, err)

		out, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.JSONEq(t, `{"dishes":[]}`, string(out))
		assert.Contains(t, completer.prompts[0], "[]")
	})

	t.Run("not json", func(t *testing.T) {
		svc := newTestService(t, &stubCompleter{reply: "not json"}, recipe.PolicyPass)

		resp, err := svc.Suggest(context.Background(), []string{"egg"})
		assert.Nil(t, resp)

		var parseErr *recipe.ParseError
		assert.ErrorAs(t, err, &parseErr)
		assert.Equal(t, recipe.KindMalformedOutput, recipe.KindOf(err))
	})

	t.Run("empty image description without images", func(t *testing.T) {
		reply := strings.Replace(pancakesJSON, `"A stack of pancakes"`, `""`, 1)
		svc := newTestService(t, &stubCompleter{reply: reply}, recipe.PolicyPass)

		resp, err := svc.Suggest(context.Background(), []string{"egg"})
		assert.Nil(t, resp)

		var schemaErr *recipe.SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "dishes[0].image_description", schemaErr.Path)
	})

	t.Run("empty image description is never sent for generation", func(t *testing.T) {
		reply := strings.Replace(pancakesJSON, `"A stack of pancakes"`, `""`, 1)
		gen := new(mocks.ImageGenerator)
		svc := newTestService(t, &stubCompleter{reply: reply}, recipe.PolicyPass, WithImages(gen))

		_, err := svc.Suggest(context.Background(), []string{"egg"})
		assert.Equal(t, recipe.KindSchemaMismatch, recipe.KindOf(err))
		gen.AssertNotCalled(t, "GenerateImage", mock.Anything, mock.Anything)
	})

	t.Run("upstream failure", func(t *testing.T) {
		upstream := &UpstreamError{Op: "chat completion", StatusCode: 503}
		svc := newTestService(t, &stubCompleter{err: upstream}, recipe.PolicyPass)

		_, err := svc.Suggest(context.Background(), []string{"egg"})
		assert.ErrorIs(t, err, upstream)
		assert.Equal(t, recipe.KindUpstream, recipe.KindOf(err))
	})

	t.Run("image failure aborts the batch", func(t *testing.T) {
		gen := new(mocks.ImageGenerator)
		gen.On("GenerateImage", mock.Anything, "Golden omelette").Return("", &UpstreamError{Op: "image generation", StatusCode: 429}).Once()

		svc := newTestService(t, &stubCompleter{reply: twoDishesJSON}, recipe.PolicyPass, WithImages(gen))

		resp, err := svc.Suggest(context.Background(), []string{"egg"})
		assert.Nil(t, resp)
		assert.Equal(t, recipe.KindUpstream, recipe.KindOf(err))
		gen.AssertNumberOfCalls(t, "GenerateImage", 1)
	})
}

func TestSuggestVocabularyPolicy(t *testing.T) {
	offVocab := `{"dishes":[{"name":"Poutine","category":"Comfort Food","cuisine":"Canadian","time":"20","description":"Fries","ingredients":{"potato":"2"},"steps":["Fry"],"nutrition":{"calories":"600","fat":"30g","protein":"10g","sugar":"2g","carbohydrates":"70g","fiber":"5g"},"image_description":"Poutine"}]}`

	t.Run("pass keeps the model's values", func(t *testing.T) {
		resp, err := newTestService(t, &stubCompleter{reply: offVocab}, recipe.PolicyPass).
			Suggest(context.Background(), []string{"potato"})
		require.NoError(t, err)
		assert.Equal(t, "Canadian", resp.Dishes[0].Cuisine)
	})

	t.Run("clamp rewrites to Other", func(t *testing.T) {
		resp, err := newTestService(t, &stubCompleter{reply: offVocab}, recipe.PolicyClamp).
			Suggest(context.Background(), []string{"potato"})
		require.NoError(t, err)
		assertVocabulary(t, vocabulary.Default(), resp.Dishes)
	})

	t.Run("reject fails with a schema mismatch", func(t *testing.T) {
		_, err := newTestService(t, &stubCompleter{reply: offVocab}, recipe.PolicyReject).
			Suggest(context.Background(), []string{"potato"})
		assert.Equal(t, recipe.KindSchemaMismatch, recipe.KindOf(err))
	})
}

func TestSuggestCache(t *testing.T) {
	t.Run("should serve repeats from the cache", func(t *testing.T) {
		completer := &stubCompleter{reply: pancakesJSON}
		gen := new(mocks.ImageGenerator)
		gen.On("GenerateImage", mock.Anything, "A stack of pancakes").Return("http://img/1", nil).Once()
		cache := newMemCache()

		svc := newTestService(t, completer, recipe.PolicyPass, WithImages(gen), WithCache(cache))

		first, err := svc.Suggest(context.Background(), []string{"egg", "flour", "milk"})
		require.NoError(t, err)
		second, err := svc.Suggest(context.Background(), []string{"egg", "flour", "milk"})
		require.NoError(t, err)

		assert.Equal(t, 1, completer.calls())
		gen.AssertNumberOfCalls(t, "GenerateImage", 1)

		a, _ := json.Marshal(first)
		b, _ := json.Marshal(second)
		assert.JSONEq(t, string(a), string(b))
	})

	t.Run("should not cache failures", func(t *testing.T) {
		completer := &stubCompleter{reply: "not json"}
		cache := newMemCache()
		svc := newTestService(t, completer, recipe.PolicyPass, WithCache(cache))

		_, err := svc.Suggest(context.Background(), []string{"egg"})
		require.Error(t, err)
		assert.Empty(t, cache.entries)
	})

	t.Run("should fall through when the cache is unavailable", func(t *testing.T) {
		completer := &stubCompleter{reply: pancakesJSON}
		cache := newMemCache()
		cache.getErr = errors.New("connection refused")
		svc := newTestService(t, completer, recipe.PolicyPass, WithCache(cache))

		_, err := svc.Suggest(context.Background(), []string{"egg"})
		require.NoError(t, err)
		assert.Equal(t, 1, completer.calls())
	})
}

func TestSteps(t *testing.T) {
	t.Run("should return ordered steps", func(t *testing.T) {
		raw := `{"steps":[{"1":"Whisk the eggs"},{"2":"Add flour and milk"},{"3":"Fry"}]}`
		completer := &stubCompleter{reply: raw}
		svc := newTestService(t, completer, recipe.PolicyPass)

		resp, err := svc.Steps(context.Background(), "Pancakes", []string{"egg", "flour", "milk"})
		require.NoError(t, err)

		out, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.JSONEq(t, raw, string(out))
		assert.Contains(t, completer.prompts[0], "Pancakes")
	})

	t.Run("should reject prose", func(t *testing.T) {
		svc := newTestService(t, &stubCompleter{reply: "First, whisk the eggs."}, recipe.PolicyPass)

		_, err := svc.Steps(context.Background(), "Pancakes", []string{"egg"})
		assert.Equal(t, recipe.KindMalformedOutput, recipe.KindOf(err))
	})

	t.Run("should use the cache", func(t *testing.T) {
		completer := &stubCompleter{reply: `{"steps":[{"1":"Fry"}]}`}
		svc := newTestService(t, completer, recipe.PolicyPass, WithCache(newMemCache()))

		for i := 0; i < 2; i++ {
			_, err := svc.Steps(context.Background(), "Eggs", []string{"egg"})
			require.NoError(t, err)
		}
		assert.Equal(t, 1, completer.calls())
	})
}
