package validate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	id, ok := ID(" 42 ")
	require.True(t, ok)
	require.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "abc", "1.5", "99999999999999999999"} {
		_, ok := ID(bad)
		require.False(t, ok, bad)
	}
}

func TestRef(t *testing.T) {
	_, ok := Ref("")
	require.True(t, ok)
	v, ok := Ref("pay_29QQoUBi66xm2f")
	require.True(t, ok)
	require.Equal(t, "pay_29QQoUBi66xm2f", v)
	_, ok = Ref("<script>")
	require.False(t, ok)
}

func TestNextPath(t *testing.T) {
	require.Equal(t, "/cart/", NextPath("/cart/"))
	require.Equal(t, "/", NextPath(""))
	require.Equal(t, "/", NextPath("https://evil.example"))
	require.Equal(t, "/", NextPath("//evil.example"))
	require.Equal(t, "/", NextPath("/\\evil.example"))
}

func TestEmailAndPassword(t *testing.T) {
	_, ok := Email("alice@storefront.test")
	require.True(t, ok)
	_, ok = Email("not-an-email")
	require.False(t, ok)

	require.True(t, Password("Passw0rd!"))
	require.False(t, Password("password"))
	require.False(t, Password("Sh0rt!"))
}
