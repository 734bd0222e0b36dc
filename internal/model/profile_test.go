package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveAccount(t *testing.T) {
	tests := []struct {
		name        string
		explicit    AccountTag
		stored      AccountTag
		wantAccount AccountTag
		wantPersist bool
	}{
		{
			name:        "explicit differing from default becomes the new default",
			explicit:    AccountCash,
			stored:      AccountCard,
			wantAccount: AccountCash,
			wantPersist: true,
		},
		{
			name:        "explicit matching default persists nothing",
			explicit:    AccountCard,
			stored:      AccountCard,
			wantAccount: AccountCard,
			wantPersist: false,
		},
		{
			name:        "no explicit falls back to the stored default",
			explicit:    "",
			stored:      AccountBank,
			wantAccount: AccountBank,
			wantPersist: false,
		},
		{
			name:        "first expense with no default stays untagged",
			explicit:    "",
			stored:      "",
			wantAccount: "",
			wantPersist: false,
		},
		{
			name:        "explicit with no stored default starts one",
			explicit:    AccountSavings,
			stored:      "",
			wantAccount: AccountSavings,
			wantPersist: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, persist := ResolveAccount(tt.explicit, tt.stored)
			assert.Equal(t, tt.wantAccount, account)
			assert.Equal(t, tt.wantPersist, persist)
		})
	}
}
