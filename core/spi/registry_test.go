package spi

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclareRequiresInterface(t *testing.T) {
	r := New()
	err := Declare[jsonCodec](r)
	var ist *InvalidServiceTypeError
	require.ErrorAs(t, err, &ist)
	assert.Contains(t, ist.Reason, "not an interface")
}

func TestDeclareTwice(t *testing.T) {
	r := New()
	require.NoError(t, Declare[Codec](r))
	assert.Error(t, Declare[Codec](r))
}

func TestLoaderForEligibility(t *testing.T) {
	r := New()

	_, err := LoaderFor[jsonCodec](r)
	var ist *InvalidServiceTypeError
	require.ErrorAs(t, err, &ist, "concrete type must be rejected")

	_, err = LoaderFor[Codec](r)
	require.ErrorAs(t, err, &ist, "undeclared interface must be rejected")
	assert.Contains(t, ist.Reason, "not declared")
}

func TestLoaderForSingleton(t *testing.T) {
	r := New()
	require.NoError(t, Declare[Codec](r))

	first, err := LoaderFor[Codec](r)
	require.NoError(t, err)
	second, err := LoaderFor[Codec](r)
	require.NoError(t, err)
	if first != second {
		t.Fatalf("expected one loader per service type")
	}
}

func TestLoaderForConcurrent(t *testing.T) {
	r := New()
	require.NoError(t, Declare[Codec](r))

	const n = 16
	loaders := make([]*Loader[Codec], n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l, err := LoaderFor[Codec](r)
			if err != nil {
				t.Errorf("loader: %v", err)
				return
			}
			loaders[i] = l
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		if loaders[i] != loaders[0] {
			t.Fatalf("goroutine %d got a different loader", i)
		}
	}
}

func TestProvideValidation(t *testing.T) {
	r := New()
	require.NoError(t, Provide[jsonCodec](r, jsonRef))
	assert.Error(t, Provide[jsonCodec](r, jsonRef), "duplicate qualified name")
	assert.Error(t, r.ProvideFactory("  ", reflect.TypeOf((*jsonCodec)(nil)), func() (any, error) { return nil, nil }))
	assert.Error(t, r.ProvideFactory("x", nil, func() (any, error) { return nil, nil }))
	assert.Error(t, r.ProvideFactory("x", reflect.TypeOf((*jsonCodec)(nil)), nil))
}

func TestDefaultNameParsing(t *testing.T) {
	service := reflect.TypeOf((*Codec)(nil)).Elem()
	cases := []struct {
		value   string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"   ", "", false},
		{"json", "json", false},
		{"  json  ", "json", false},
		{"json,", "json", false},
		{"json,gob", "", true},
		{" json , gob ", "", true},
	}
	for _, tc := range cases {
		got, err := defaultName(service, tc.value)
		if tc.wantErr {
			var cfg *ConfigurationError
			require.ErrorAs(t, err, &cfg, "value %q", tc.value)
			continue
		}
		require.NoError(t, err, "value %q", tc.value)
		assert.Equal(t, tc.want, got, "value %q", tc.value)
	}
}
