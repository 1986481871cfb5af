package element_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/element"
	"github.com/aretw0/arbor/pkg/locator"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(chain []locator.Locator) []string {
	out := make([]string, 0, len(chain))
	for _, l := range chain {
		out = append(out, l.String())
	}
	return out
}

var selectorFn = locator.Resolve(func(ctx context.Context, parent ports.Handle) (ports.Handle, error) {
	return parent.Find(ctx, "html")
})

var exampleTree = element.MustBuild(element.Def{
	"fn": element.MustBuild(element.Def{"el": selectorFn}),
	"bigTree": element.MustBuild(element.Def{
		"el":  "bigTree",
		"one": element.MustBuild(element.Def{"el": "one", "two": element.MustBuild("two")}),
	}),
	"withSelector": element.MustBuild(element.Def{
		"el":              "withSelector",
		"withSelector":    element.MustBuild(element.Def{"el": "withSelector"}),
		"withOutSelector": element.MustBuild(element.Def{}),
		"withRoot":        element.MustBuild(locator.Root("withRoot")),
		"fn":              element.MustBuild(element.Def{"el": selectorFn}),
	}),
	"withOutSelector": element.MustBuild(element.Def{
		"withSelector":    element.MustBuild(element.Def{"el": "withSelector"}),
		"withOutSelector": element.MustBuild(element.Def{}),
		"fn":              element.MustBuild(element.Def{"el": selectorFn}),
	}),
})

func lookup(t *testing.T, path string) *element.Node {
	t.Helper()
	n, err := element.Lookup(exampleTree, path)
	require.NoError(t, err)
	return n
}

func TestResolveChain_SingleElement(t *testing.T) {
	assert.Empty(t, element.ResolveChain(element.MustBuild(element.Def{})))
	assert.Equal(t, []string{"selector"}, texts(element.ResolveChain(element.MustBuild("selector"))))
	assert.Empty(t, element.ResolveChain(element.MustBuild("")), "empty text addresses nothing")
}

func TestResolveChain_RootPreventsParentSelectors(t *testing.T) {
	chain := element.ResolveChain(lookup(t, "withSelector.withRoot"))
	assert.Equal(t, []string{"withRoot"}, texts(chain))
	assert.True(t, locator.IsRootAnchored(chain[0]))
}

func TestResolveChain_ParentAndChildSplitBySpace(t *testing.T) {
	n := lookup(t, "withSelector.withSelector")
	assert.Equal(t, []string{"withSelector", "withSelector"}, texts(element.ResolveChain(n)))
	assert.Equal(t, "withSelector withSelector", chainText(t, n))
}

func TestResolveChain_Tree(t *testing.T) {
	assert.Equal(t, []string{"withSelector"}, texts(element.ResolveChain(lookup(t, "withSelector.withOutSelector"))))
	assert.Equal(t, []string{"withSelector"}, texts(element.ResolveChain(lookup(t, "withOutSelector.withSelector"))))
	assert.Empty(t, element.ResolveChain(lookup(t, "withOutSelector.withOutSelector")))
	assert.Equal(t, []string{"bigTree", "one", "two"}, texts(element.ResolveChain(lookup(t, "bigTree.one.two"))))
}

func TestResolveChain_FunctionAsSelector(t *testing.T) {
	chain := element.ResolveChain(lookup(t, "fn"))
	require.Len(t, chain, 1)
	assert.Equal(t, locator.KindResolver, chain[0].Kind())

	chain = element.ResolveChain(lookup(t, "withSelector.fn"))
	require.Len(t, chain, 2)
	assert.Equal(t, "withSelector", chain[0].String())
	assert.Equal(t, locator.KindResolver, chain[1].Kind())

	chain = element.ResolveChain(lookup(t, "withOutSelector.fn"))
	require.Len(t, chain, 1)
	assert.Equal(t, locator.KindResolver, chain[0].Kind())
}

// Scenario A.
func TestResolveChain_ScenarioA(t *testing.T) {
	parent := element.MustBuild(element.Def{"el": ".root", "item": element.Def{"el": ".item"}})
	assert.Equal(t, ".root .item", chainText(t, parent.Child("item")))
}

// Scenario C.
func TestResolveChain_ScenarioC(t *testing.T) {
	parent := element.MustBuild(element.Def{
		"el":   ".root",
		"name": "parent",
		"item": element.MustBuild(locator.Root(".item")),
	})
	assert.Equal(t, []string{".item"}, texts(element.ResolveChain(parent.Child("item"))))
}

func TestResolveChain_NearestRootWins(t *testing.T) {
	tree := element.MustBuild(element.Def{
		"el": ".top",
		"outer": element.MustBuild(element.Def{
			"el":    locator.Root(".outer"),
			"mid":   element.MustBuild(element.Def{"el": ".mid", "inner": element.MustBuild(locator.Root(".inner"))}),
			"plain": element.MustBuild(".plain"),
		}),
	})

	assert.Equal(t, []string{".inner"}, texts(element.ResolveChain(tree.Child("outer").Child("mid").Child("inner"))))
	assert.Equal(t, []string{".outer", ".plain"}, texts(element.ResolveChain(tree.Child("outer").Child("plain"))))
	assert.Equal(t, []string{".outer", ".mid"}, texts(element.ResolveChain(tree.Child("outer").Child("mid"))))
}

func TestResolveChain_ResolversAboveRootParticipate(t *testing.T) {
	tree := element.MustBuild(element.Def{
		"el": selectorFn,
		"section": element.MustBuild(element.Def{
			"el":     ".section",
			"anchor": element.MustBuild(locator.Root(".anchor")),
		}),
	})

	chain := element.ResolveChain(tree.Child("section").Child("anchor"))
	require.Len(t, chain, 2)
	assert.Equal(t, locator.KindResolver, chain[0].Kind())
	assert.Equal(t, ".anchor", chain[1].String())
}

func TestResolveChain_NotCached(t *testing.T) {
	// Two independent trees sharing a definition observe their own ancestors.
	shared := element.MustBuild(element.Def{"el": ".leaf"})
	for _, top := range []string{".a", ".b", ".c"} {
		tree := element.MustBuild(element.Def{"el": top, "leaf": shared})
		assert.Equal(t, top+" .leaf", chainText(t, tree.Child("leaf")))
	}
}
