package sync

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/pkg/errors"
)

// ComputeHash 计算记录内容哈希，用于变更检测
// 先剥离簿记字段，再按字典序键顺序序列化为JSON后取SHA-256
// encoding/json 对 map 键做字典序排序，保证同一内容跨进程哈希稳定
func ComputeHash(row Row) (string, error) {
	data, err := json.Marshal(row.Sanitized())
	if err != nil {
		return "", errors.Wrap(err, "序列化记录失败")
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
