package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// RewardPolicy controls how many points commerce operations grant.
type RewardPolicy struct {
	// PurchaseRateDenominator divides an item price to produce the purchase
	// reward, rounding down: price 999 with denominator 100 grants 9 points.
	PurchaseRateDenominator int64 `mapstructure:"purchaseRateDenominator"`
	// ReplyPoint is the flat grant for writing a reply on a purchased video.
	ReplyPoint int64 `mapstructure:"replyPoint"`
}

func DefaultRewardPolicy() RewardPolicy {
	return RewardPolicy{
		PurchaseRateDenominator: 100,
		ReplyPoint:              10,
	}
}

// RewardPolicyHolder serves the current policy and hot-reloads it when the
// config file changes.
type RewardPolicyHolder struct {
	current atomic.Value // holds RewardPolicy
}

func NewRewardPolicyHolder() (*RewardPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("rewards")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/coursehive")
	v.AddConfigPath(".")

	v.SetEnvPrefix("COURSEHIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultRewardPolicy()
		v.SetDefault("rewards.purchaseRateDenominator", defaults.PurchaseRateDenominator)
		v.SetDefault("rewards.replyPoint", defaults.ReplyPoint)
	}

	var policy RewardPolicy
	if err := v.UnmarshalKey("rewards", &policy); err != nil {
		return nil, err
	}
	if err := validateRewardPolicy(policy); err != nil {
		return nil, err
	}

	holder := &RewardPolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated RewardPolicy
		if err := v.UnmarshalKey("rewards", &updated); err != nil {
			log.Printf("[reward-policy] reload failed: %v", err)
			return
		}
		if err := validateRewardPolicy(updated); err != nil {
			log.Printf("[reward-policy] invalid policy ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[reward-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *RewardPolicyHolder) Get() RewardPolicy {
	return h.current.Load().(RewardPolicy)
}

// NewStaticRewardPolicyHolder returns a holder pinned to the given policy.
// Used by tests and tools that must not touch the filesystem.
func NewStaticRewardPolicyHolder(policy RewardPolicy) *RewardPolicyHolder {
	holder := &RewardPolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func validateRewardPolicy(policy RewardPolicy) error {
	if policy.PurchaseRateDenominator <= 0 {
		return errors.New("rewards.purchaseRateDenominator must be positive")
	}
	if policy.ReplyPoint < 0 {
		return errors.New("rewards.replyPoint cannot be negative")
	}
	return nil
}
