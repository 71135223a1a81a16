package lookup

import (
	"context"
	"encoding/json"
	"time"

	"chatwork-bot/internal/restclient"
)

const unknownAnswer = "不明"

// Oracle answers yes/no questions from a yesno.wtf compatible endpoint.
type Oracle struct {
	rc *restclient.RestClient
}

func NewOracle(endpoint string, timeout time.Duration) *Oracle {
	return &Oracle{rc: restclient.NewRestClient(endpoint, nil, timeout)}
}

func (o *Oracle) Answer(ctx context.Context) (string, error) {
	body, status, err := o.rc.Get(ctx, "", nil, nil)
	if err != nil {
		return "", unavailable("oracle", err)
	}
	if err := checkStatus("oracle", status); err != nil {
		return "", err
	}
	var resp struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", unavailable("oracle decode", err)
	}
	if resp.Answer == "" {
		return unknownAnswer, nil
	}
	return resp.Answer, nil
}
