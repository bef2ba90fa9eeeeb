package objectregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-dapp/config"
	"github.com/dep2p/go-dapp/pkg/catalog"
	"github.com/dep2p/go-dapp/pkg/interfaces"
	"github.com/dep2p/go-dapp/tests/mocks"
)

func TestModule(t *testing.T) {
	cat := testCatalog(t)
	cs := mocks.NewMockCodeStore()
	cfg := config.NewConfig()

	var reg interfaces.ObjectRegistry
	app := fxtest.New(t,
		fx.Supply(cfg),
		fx.Provide(
			func() *catalog.Catalog { return cat },
			func(c *catalog.Catalog) interfaces.ObjectFactory { return c },
			func(c *catalog.Catalog) interfaces.SignatureProvider { return c },
			func() interfaces.CodeStore { return cs },
		),
		Module(),
		fx.Populate(&reg),
	)
	app.RequireStart()

	require.NotNil(t, reg)
	reg.Register("calculator", nodeB)
	methods, err := reg.ListMethods("calculator")
	require.NoError(t, err)
	assert.Contains(t, methods, "add")

	app.RequireStop()
	assert.Len(t, cs.FetchCalls(), 1)

	t.Log("✅ objectregistry 模块测试通过")
}
