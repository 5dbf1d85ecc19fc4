package dynamo

import (
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// buildUpdateExpr converts a set-map and a remove-list into a single DynamoDB
// update expression ("SET ... REMOVE ..."). Set and remove land in one
// UpdateItem so companion writes (clear OTP + flip status, for example) are
// atomic per document. Keys are iterated in sorted order so the expression is
// deterministic.
func buildUpdateExpr(set map[string]interface{}, remove []string) (expr string, names map[string]string, values map[string]types.AttributeValue, err error) {
	if len(set) == 0 && len(remove) == 0 {
		return "", nil, nil, fmt.Errorf("no fields to update")
	}

	names = make(map[string]string)
	values = make(map[string]types.AttributeValue)

	setKeys := make([]string, 0, len(set))
	for k := range set {
		setKeys = append(setKeys, k)
	}
	sort.Strings(setKeys)

	i := 0
	for _, k := range setKeys {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		names[nameKey] = k
		av, mErr := attributevalue.Marshal(set[k])
		if mErr != nil {
			return "", nil, nil, fmt.Errorf("marshal field %s: %w", k, mErr)
		}
		values[valueKey] = av
		if i == 0 {
			expr = "SET "
		} else {
			expr += ", "
		}
		expr += fmt.Sprintf("%s = %s", nameKey, valueKey)
		i++
	}

	for j, k := range remove {
		nameKey := fmt.Sprintf("#r%d", j)
		names[nameKey] = k
		if j == 0 {
			if expr != "" {
				expr += " "
			}
			expr += "REMOVE "
		} else {
			expr += ", "
		}
		expr += nameKey
	}

	if len(values) == 0 {
		values = nil
	}
	return expr, names, values, nil
}
