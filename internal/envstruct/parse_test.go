package envstruct_test

import (
	"strings"
	"testing"
	"time"

	"github.com/myrjola/masks/internal/envstruct"
	"github.com/stretchr/testify/require"
)

func TestPopulate(t *testing.T) {
	noEnv := func(_ string) (string, bool) { return "", false }
	type args struct {
		v         any
		lookupEnv func(string) (string, bool)
	}
	tests := []struct {
		name    string
		args    args
		want    any
		wantErr error
	}{
		{
			name:    "nil",
			args:    args{v: nil, lookupEnv: noEnv},
			wantErr: envstruct.ErrInvalidValue,
		},
		{
			name:    "not pointer",
			args:    args{v: struct{}{}, lookupEnv: noEnv},
			wantErr: envstruct.ErrInvalidValue,
		},
		{
			name: "empty struct",
			args: args{v: &struct{}{}, lookupEnv: noEnv},
			want: &struct{}{},
		},
		{
			name: "empty env",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Addr string `env:"MASKS_ADDR"`
				}{},
				lookupEnv: noEnv,
			},
			wantErr: envstruct.ErrEnvNotSet,
		},
		{
			name: "picks correct env variable",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Addr       string `env:"MASKS_ADDR"`
					SQLiteURL  string `env:"MASKS_SQLITE_URL"`
					OtherValue string
				}{},
				lookupEnv: func(s string) (string, bool) { return strings.ToLower(s), true },
			},
			want: &struct {
				Addr       string
				SQLiteURL  string
				OtherValue string
			}{Addr: "masks_addr", SQLiteURL: "masks_sqlite_url", OtherValue: ""},
		},
		{
			name: "handles default values of every supported type",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Addr     string        `env:"MASKS_ADDR" envDefault:"localhost:3000"`
					Readers  int           `env:"MASKS_READERS" envDefault:"10"`
					Prod     bool          `env:"MASKS_PRODUCTION" envDefault:"true"`
					Timeout  time.Duration `env:"MASKS_TIMEOUT" envDefault:"5s"`
					Origins  []string      `env:"MASKS_ORIGINS" envDefault:"http://a, http://b,"`
					Untagged int
				}{},
				lookupEnv: noEnv,
			},
			want: &struct {
				Addr     string
				Readers  int
				Prod     bool
				Timeout  time.Duration
				Origins  []string
				Untagged int
			}{
				Addr:    "localhost:3000",
				Readers: 10,
				Prod:    true,
				Timeout: 5 * time.Second,
				Origins: []string{"http://a", "http://b"},
			},
		},
		{
			name: "rejects malformed int",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Readers int `env:"MASKS_READERS"`
				}{},
				lookupEnv: func(_ string) (string, bool) { return "ten", true },
			},
			wantErr: envstruct.ErrInvalidValue,
		},
		{
			name: "rejects unsupported types",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Ratio float64 `env:"MASKS_RATIO"`
				}{},
				lookupEnv: func(_ string) (string, bool) { return "0.5", true },
			},
			wantErr: envstruct.ErrInvalidValue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.args.v
			err := envstruct.Populate(v, tt.args.lookupEnv)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.EqualValues(t, tt.want, v)
		})
	}
}
