package chain

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"

	"clicker/internal/core"
	"clicker/internal/lcdclient"
)

type account struct {
	Address       string
	AccountNumber uint64
	Sequence      uint64
}

// Account layouts differ by type; vesting accounts nest the base account.
var accountPrefixes = []string{
	"account",
	"account.base_account",
	"account.base_vesting_account.base_account",
}

func (c *Client) getAccount(ctx context.Context, addr string) (*account, error) {
	resp, err := c.lcd.DoRaw(ctx, lcdclient.Request{
		Method:   http.MethodGet,
		Endpoint: "/cosmos/auth/v1beta1/accounts/" + addr,
	})
	if err != nil {
		return nil, err
	}

	for _, prefix := range accountPrefixes {
		number := gjson.GetBytes(resp.Body, prefix+".account_number")
		if !number.Exists() {
			continue
		}
		return &account{
			Address:       addr,
			AccountNumber: number.Uint(),
			Sequence:      gjson.GetBytes(resp.Body, prefix+".sequence").Uint(),
		}, nil
	}

	return nil, core.NewNetworkError(http.StatusBadGateway, "unrecognized account layout for "+addr, nil)
}
