package utils

import (
	"context"

	"github.com/ClaudioSBezerra/JC-CP01-sub001/appctx"
)

var (
	ContextKeyCompanyId     = appctx.ContextKeyCompanyId
	ContextKeyBranchCode    = appctx.ContextKeyBranchCode
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
	ContextKeyTriggerSource = appctx.ContextKeyTriggerSource
)

func GetCompanyIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCompanyId)
}

func GetBranchCodeFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyBranchCode)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func GetTriggerSourceFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyTriggerSource)
}

func SetCompanyIdInContext(ctx context.Context, companyId string) context.Context {
	return appctx.Set(ctx, ContextKeyCompanyId, companyId)
}

func SetBranchCodeInContext(ctx context.Context, branchCode string) context.Context {
	return appctx.Set(ctx, ContextKeyBranchCode, branchCode)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func SetTriggerSourceInContext(ctx context.Context, source string) context.Context {
	return appctx.Set(ctx, ContextKeyTriggerSource, source)
}
